package repository

import (
	"github.com/go-faster/jx"

	"github.com/shopfront/shopfront/internal/domain/landing"
	"github.com/shopfront/shopfront/internal/domain/order"
)

// JSONB codecs for the embedded documents: the customer object on orders and
// the FAQ list on landing page products.

func encodeCustomer(c order.Customer) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("mobileNumber", func(e *jx.Encoder) { e.Str(c.MobileNumber) })
		e.Field("address", func(e *jx.Encoder) { e.Str(c.Address) })
	})
	return e.Bytes()
}

func decodeCustomer(data []byte) (order.Customer, error) {
	var c order.Customer
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			c.Name, err = d.Str()
		case "mobileNumber":
			c.MobileNumber, err = d.Str()
		case "address":
			c.Address, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return c, err
}

func encodeFAQs(faqs []landing.FAQ) []byte {
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, faq := range faqs {
			e.Obj(func(e *jx.Encoder) {
				e.Field("question", func(e *jx.Encoder) { e.Str(faq.Question) })
				e.Field("answer", func(e *jx.Encoder) { e.Str(faq.Answer) })
			})
		}
	})
	return e.Bytes()
}

func decodeFAQs(data []byte) ([]landing.FAQ, error) {
	var faqs []landing.FAQ
	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		var faq landing.FAQ
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "question":
				faq.Question, err = d.Str()
			case "answer":
				faq.Answer, err = d.Str()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		faqs = append(faqs, faq)
		return nil
	})
	return faqs, err
}
