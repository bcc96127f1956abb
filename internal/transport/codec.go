package transport

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/fuzzy"
	"github.com/danielpatrickdp/fuzzy-kart/go-controller/internal/inference"
)

// Message field names.
const (
	fieldInput   = "input"
	fieldTrace   = "trace"
	fieldOutput  = "output"
	fieldVersion = "version"
	fieldFirings = "firings"
)

// #region encode
func numberOrNull(v float64) *structpb.Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return structpb.NewNullValue()
	}
	return structpb.NewNumberValue(v)
}

func encodeRequest(in fuzzy.CrispInput, trace bool) *structpb.Struct {
	vals := make([]*structpb.Value, len(in))
	for i, v := range in {
		vals[i] = numberOrNull(v)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldInput: structpb.NewListValue(&structpb.ListValue{Values: vals}),
		fieldTrace: structpb.NewBoolValue(trace),
	}}
}

func encodeResponse(out fuzzy.CrispOutput, version string, firings inference.Trace, withTrace bool) *structpb.Struct {
	outFields := make(map[string]*structpb.Value, fuzzy.NumOutputs)
	for _, o := range fuzzy.Outputs {
		outFields[o.String()] = numberOrNull(out.Get(o))
	}
	fields := map[string]*structpb.Value{
		fieldOutput:  structpb.NewStructValue(&structpb.Struct{Fields: outFields}),
		fieldVersion: structpb.NewStringValue(version),
	}
	if withTrace {
		list := make([]*structpb.Value, len(firings))
		for i, f := range firings {
			list[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				"rule":       structpb.NewStringValue(f.Rule),
				"output":     structpb.NewStringValue(f.Output),
				"state":      structpb.NewStringValue(f.State),
				"activation": structpb.NewNumberValue(f.Activation),
			}})
		}
		fields[fieldFirings] = structpb.NewListValue(&structpb.ListValue{Values: list})
	}
	return &structpb.Struct{Fields: fields}
}

// #endregion encode

// #region decode
func numberOrNaN(v *structpb.Value) (float64, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return k.NumberValue, nil
	case *structpb.Value_NullValue, nil:
		return math.NaN(), nil
	}
	return 0, fmt.Errorf("want number or null, got %T", v.GetKind())
}

func decodeRequest(req *structpb.Struct) (fuzzy.CrispInput, bool, error) {
	list := req.GetFields()[fieldInput].GetListValue()
	if list == nil {
		return fuzzy.CrispInput{}, false, fmt.Errorf("%q must be a list", fieldInput)
	}
	vals := make([]float64, len(list.GetValues()))
	for i, v := range list.GetValues() {
		f, err := numberOrNaN(v)
		if err != nil {
			return fuzzy.CrispInput{}, false, fmt.Errorf("%s[%d]: %w", fieldInput, i, err)
		}
		vals[i] = f
	}
	in, err := fuzzy.NewCrispInput(vals)
	if err != nil {
		return fuzzy.CrispInput{}, false, err
	}
	return in, req.GetFields()[fieldTrace].GetBoolValue(), nil
}

func decodeResponse(resp *structpb.Struct) (fuzzy.CrispOutput, string, inference.Trace, error) {
	var out fuzzy.CrispOutput
	outFields := resp.GetFields()[fieldOutput].GetStructValue().GetFields()
	for _, o := range fuzzy.Outputs {
		v, ok := outFields[o.String()]
		if !ok {
			return out, "", nil, fmt.Errorf("%w: %s missing from response", fuzzy.ErrUnknownOutput, o)
		}
		f, err := numberOrNaN(v)
		if err != nil {
			return out, "", nil, fmt.Errorf("%s: %w", o, err)
		}
		out.Set(o, f)
	}

	var trace inference.Trace
	for _, v := range resp.GetFields()[fieldFirings].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		trace = append(trace, inference.Firing{
			Rule:       f["rule"].GetStringValue(),
			Output:     f["output"].GetStringValue(),
			State:      f["state"].GetStringValue(),
			Activation: f["activation"].GetNumberValue(),
		})
	}
	return out, resp.GetFields()[fieldVersion].GetStringValue(), trace, nil
}

// #endregion decode
