package models

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

var ErrUnknownRateType = errors.New("unknown rate structure type")

// rateStructureJSON is the wire shape: {"type": "...", ...type-specific fields}.
type rateStructureJSON struct {
	Type            string         `json:"type"`
	BaseRate        *float64       `json:"baseRate,omitempty"`
	WeightBands     []WeightBand   `json:"weightBands,omitempty"`
	DistanceBands   []DistanceBand `json:"distanceBands,omitempty"`
	ValuePercentage *float64       `json:"valuePercentage,omitempty"`
}

func MarshalRateStructure(rs RateStructure) ([]byte, error) {
	var w rateStructureJSON
	switch s := rs.(type) {
	case FlatRate:
		w = rateStructureJSON{Type: s.Type(), BaseRate: &s.BaseRate}
	case WeightBasedRate:
		w = rateStructureJSON{Type: s.Type(), WeightBands: s.Bands}
	case DistanceBasedRate:
		w = rateStructureJSON{Type: s.Type(), BaseRate: &s.BaseRate, DistanceBands: s.Bands}
	case ValueBasedRate:
		w = rateStructureJSON{Type: s.Type(), ValuePercentage: &s.ValuePercentage}
	case nil:
		return []byte("null"), nil
	default:
		return nil, errors.Wrapf(ErrUnknownRateType, "%T", rs)
	}
	return json.Marshal(w)
}

func UnmarshalRateStructure(b []byte) (RateStructure, error) {
	var w rateStructureJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, errors.Wrap(err, "decode rate structure")
	}

	switch w.Type {
	case RateTypeFlat:
		if w.BaseRate == nil {
			return nil, errors.Errorf("%s: baseRate is required", w.Type)
		}
		return FlatRate{BaseRate: *w.BaseRate}, nil
	case RateTypeWeightBased:
		if len(w.WeightBands) == 0 {
			return nil, errors.Errorf("%s: weightBands are required", w.Type)
		}
		return WeightBasedRate{Bands: w.WeightBands}, nil
	case RateTypeDistanceBased:
		if w.BaseRate == nil {
			return nil, errors.Errorf("%s: baseRate is required", w.Type)
		}
		return DistanceBasedRate{BaseRate: *w.BaseRate, Bands: w.DistanceBands}, nil
	case RateTypeValueBased:
		if w.ValuePercentage == nil {
			return nil, errors.Errorf("%s: valuePercentage is required", w.Type)
		}
		return ValueBasedRate{ValuePercentage: *w.ValuePercentage}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownRateType, "%q", w.Type)
	}
}

type shippingRateFields ShippingRate

func (r ShippingRate) MarshalJSON() ([]byte, error) {
	rs, err := MarshalRateStructure(r.Structure)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		shippingRateFields
		RateStructure json.RawMessage `json:"rateStructure"`
	}{shippingRateFields(r), rs})
}

func (r *ShippingRate) UnmarshalJSON(b []byte) error {
	var aux struct {
		shippingRateFields
		RateStructure json.RawMessage `json:"rateStructure"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = ShippingRate(aux.shippingRateFields)
	r.Structure = nil
	if len(aux.RateStructure) > 0 && !bytes.Equal(aux.RateStructure, []byte("null")) {
		rs, err := UnmarshalRateStructure(aux.RateStructure)
		if err != nil {
			return err
		}
		r.Structure = rs
	}
	return nil
}
