package image

import (
	"github.com/ezrec/regvm/translate"
)

var f = translate.From

// ErrImagePartial is an image whose length is not a whole number of words.
type ErrImagePartial int

func (err ErrImagePartial) Error() string {
	return f("image has %d trailing bytes", int(err))
}

func (err ErrImagePartial) Is(target error) (ok bool) {
	_, ok = target.(ErrImagePartial)
	return
}
