// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package tfrecord

import (
	"errors"
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrUnsupportedFeature is returned when an Example holds a non-int64 feature.
var ErrUnsupportedFeature = errors.New("unsupported feature kind")

// Field numbers of the tf.train messages.
const (
	exampleFeaturesField = 1 // Example.features
	featuresMapField     = 1 // Features.feature (map entry)
	mapKeyField          = 1
	mapValueField        = 2
	featureInt64Field    = 3 // Feature.int64_list
	int64ListValueField  = 1 // Int64List.value
)

// Features maps feature names to int64 lists.
type Features map[string][]int64

// MarshalExample encodes features as a serialized tf.train.Example. Map
// entries are written in key order so output is deterministic.
func MarshalExample(features Features) []byte {
	keys := make([]string, 0, len(features))
	for k := range features {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var featuresMsg []byte
	for _, k := range keys {
		var packed []byte
		for _, v := range features[k] {
			packed = protowire.AppendVarint(packed, uint64(v)) //nolint:gosec // proto int64 is two's complement
		}

		var int64List []byte
		int64List = protowire.AppendTag(int64List, int64ListValueField, protowire.BytesType)
		int64List = protowire.AppendBytes(int64List, packed)

		var feature []byte
		feature = protowire.AppendTag(feature, featureInt64Field, protowire.BytesType)
		feature = protowire.AppendBytes(feature, int64List)

		var entry []byte
		entry = protowire.AppendTag(entry, mapKeyField, protowire.BytesType)
		entry = protowire.AppendString(entry, k)
		entry = protowire.AppendTag(entry, mapValueField, protowire.BytesType)
		entry = protowire.AppendBytes(entry, feature)

		featuresMsg = protowire.AppendTag(featuresMsg, featuresMapField, protowire.BytesType)
		featuresMsg = protowire.AppendBytes(featuresMsg, entry)
	}

	var example []byte
	example = protowire.AppendTag(example, exampleFeaturesField, protowire.BytesType)
	example = protowire.AppendBytes(example, featuresMsg)
	return example
}

// UnmarshalExample decodes a serialized tf.train.Example with int64 features.
// Unknown fields are skipped.
func UnmarshalExample(b []byte) (Features, error) {
	out := make(Features)
	err := eachField(b, func(num protowire.Number, typ protowire.Type, val []byte) error {
		if num != exampleFeaturesField || typ != protowire.BytesType {
			return nil
		}
		return eachField(val, func(num protowire.Number, typ protowire.Type, entry []byte) error {
			if num != featuresMapField || typ != protowire.BytesType {
				return nil
			}
			return decodeEntry(entry, out)
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeEntry(entry []byte, out Features) error {
	var (
		key    string
		values []int64
	)
	err := eachField(entry, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch {
		case num == mapKeyField && typ == protowire.BytesType:
			key = string(val)
		case num == mapValueField && typ == protowire.BytesType:
			v, err := decodeFeature(val)
			if err != nil {
				return err
			}
			values = v
		}
		return nil
	})
	if err != nil {
		return err
	}
	out[key] = values
	return nil
}

func decodeFeature(b []byte) ([]int64, error) {
	var values []int64
	err := eachField(b, func(num protowire.Number, typ protowire.Type, list []byte) error {
		if num != featureInt64Field {
			return fmt.Errorf("%w: field %d", ErrUnsupportedFeature, num)
		}
		if typ != protowire.BytesType {
			return fmt.Errorf("int64_list has wire type %d", typ)
		}
		return eachField(list, func(num protowire.Number, typ protowire.Type, val []byte) error {
			if num != int64ListValueField {
				return nil
			}
			switch typ {
			case protowire.BytesType: // packed
				for len(val) > 0 {
					v, n := protowire.ConsumeVarint(val)
					if n < 0 {
						return fmt.Errorf("decode packed int64: %w", protowire.ParseError(n))
					}
					values = append(values, int64(v)) //nolint:gosec // proto int64 is two's complement
					val = val[n:]
				}
			case protowire.VarintType:
				v, _ := protowire.ConsumeVarint(val)
				values = append(values, int64(v)) //nolint:gosec // proto int64 is two's complement
			}
			return nil
		})
	})
	return values, err
}

// eachField walks the top-level fields of a message. For varint fields val
// holds the raw varint bytes; for length-delimited fields it holds the payload.
func eachField(b []byte, fn func(num protowire.Number, typ protowire.Type, val []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("decode tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		var val []byte
		switch typ {
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return fmt.Errorf("decode field %d: %w", num, protowire.ParseError(m))
			}
			val, n = v, m
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return fmt.Errorf("decode field %d: %w", num, protowire.ParseError(m))
			}
			val, n = b[:m], m
		}
		if err := fn(num, typ, val); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
