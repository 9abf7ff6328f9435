package fm

import (
	"fmt"
	"reflect"
)

// An Initer is a component whose state depends on the stream parameters.
type Initer interface {
	InitAudio(Params)
}

// Params describes the host stream. The sample rate is fixed for the life of
// anything initialized with it.
type Params struct {
	SampleRate float64
	BufferSize int
}

func (p *Params) InitAudio(q Params) { *p = q }

// Init calls InitAudio on x, or on every Initer reachable through the fields
// and slice elements of x.  x must be a pointer if it implements Initer
// through a pointer receiver.
func Init(x interface{}, p Params) error {
	return initVal(reflect.ValueOf(x), p)
}

var initerType = reflect.TypeOf(new(Initer)).Elem()

func initVal(v reflect.Value, p Params) error {
	if !v.IsValid() || v.Kind() == reflect.Pointer && v.IsNil() || !v.CanInterface() {
		return nil
	}

	v = reflect.Indirect(v)
	if v.CanAddr() && v.Type().Name() != "" && v.Kind() != reflect.Interface {
		v = v.Addr()
	}
	if x, ok := v.Interface().(Initer); ok {
		x.InitAudio(p)
		return nil
	}
	if t := v.Type(); t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(initerType) {
		return fmt.Errorf("fm.Init: %s does not implement Initer but *%s does", t, t)
	}

	v = reflect.Indirect(v)
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err := initVal(v.Field(i), p); err != nil {
				return fmt.Errorf("%w\n\tfield %s", err, v.Type().Field(i).Name)
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := initVal(v.Index(i), p); err != nil {
				return err
			}
		}
	}
	return nil
}
