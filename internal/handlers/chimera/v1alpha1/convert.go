package v1alpha1

import (
	"encoding/json"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
	"github.com/KirkDiggler/chimera-protocol/internal/repositories/snapshots"
	"github.com/KirkDiggler/chimera-protocol/internal/services/session"
)

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func boolField(req *structpb.Struct, name string) (bool, bool) {
	v, ok := req.GetFields()[name]
	if !ok {
		return false, false
	}
	_, isBool := v.GetKind().(*structpb.Value_BoolValue)
	return v.GetBoolValue(), isBool
}

func numberField(req *structpb.Struct, name string) float64 {
	return req.GetFields()[name].GetNumberValue()
}

func stringListField(req *structpb.Struct, name string) []string {
	values := req.GetFields()[name].GetListValue().GetValues()
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := v.GetStringValue(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// requireString returns an InvalidArgument error naming every missing field
func requireString(req *structpb.Struct, names ...string) error {
	vb := errors.NewValidationBuilder()
	for _, name := range names {
		errors.ValidateRequired(name, stringField(req, name), vb)
	}
	return vb.Build()
}

// toStruct converts anything with json tags into a Struct
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode response")
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, errors.Wrap(err, "failed to convert response")
	}
	return out, nil
}

func viewToStruct(v *session.View) (*structpb.Struct, error) {
	doc := map[string]any{
		"session_id":  v.SessionID,
		"mode":        v.Mode,
		"mode_reason": v.ModeReason,
		"notice":      v.Notice,
		"status": map[string]any{
			"creation":           string(v.Status.Creation),
			"busy":               v.Status.Busy,
			"emergency_stop":     v.Status.EmergencyStop,
			"halted":             v.Status.Halted,
			"avatar_in_progress": v.Status.AvatarInProgress,
		},
		"messages": v.Messages,
	}
	if v.Status.State != nil {
		doc["state"] = v.Status.State
	}
	return toStruct(doc)
}

func summaryToMap(s *snapshots.Summary) map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"slot":       s.Slot,
		"session_id": s.SessionID,
		"saved_at":   s.SavedAt.UTC().Format(time.RFC3339Nano),
		"size":       s.Size,
	}
}
