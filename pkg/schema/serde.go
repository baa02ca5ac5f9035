package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var ErrTooFewOpts = errors.New("too few options")

// A Serde writes and reads values in the schema registry wire format:
// magic byte, schema ID, avro body.
type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

// complete reports whether both the subject and the identifier are set.
func (o serdeOpts) complete() bool {
	return o.subject != "" && o.si != nil
}

func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if si == nil {
			return errors.New("schema identifier is nil")
		}
		so.si = si
		return nil
	}
}

// NewSerdeProductV1 registers [ProductSchemaTextV1] under the subject and
// returns a serde for [ProductV1] values.
func NewSerdeProductV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeProductV1"

	s, err := newRegisteredSerde(ctx, ProductSchemaTextV1, ProductV1{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// NewSerdeSearchEventV1 is the [SearchEventV1] counterpart of
// [NewSerdeProductV1].
func NewSerdeSearchEventV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeSearchEventV1"

	s, err := newRegisteredSerde(ctx, SearchEventSchemaTextV1, SearchEventV1{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// newRegisteredSerde binds the value type of v to the registry ID of
// schemaText. Only that type is accepted by Encode and Decode.
func newRegisteredSerde(
	ctx context.Context, schemaText string, v any, opts []Opt,
) (*sr.Serde, error) {
	var o serdeOpts
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if !o.complete() {
		return nil, ErrTooFewOpts
	}

	avroSchema, err := avro.Parse(schemaText)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	id, err := o.si.DetermineID(ctx, o.subject, schemaText)
	if err != nil {
		return nil, fmt.Errorf("subject %q: %w", o.subject, err)
	}

	var s sr.Serde
	s.Register(
		id, v,
		sr.EncodeFn(AvroEncodeFn(avroSchema)),
		sr.DecodeFn(AvroDecodeFn(avroSchema)),
	)
	return &s, nil
}
