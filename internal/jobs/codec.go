package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/meblomat/meblomat/internal/domain/job"
)

// EncodePayload marshals a typed payload after checking it matches the job
// type. Catching the mismatch here beats a worker failing on garbage later.
func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	switch t {
	case JobSendClientInvite:
		if _, ok := payload.(SendClientInvitePayload); !ok {
			if _, ok := payload.(*SendClientInvitePayload); !ok {
				return nil, ErrPayloadTypeMismatch
			}
		}
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals j.Payload into the typed payload struct for its
// job type.
func DecodePayload(j job.Job) (any, error) {
	t := JobType(j.Type)

	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch t {
	case JobSendClientInvite:
		var p SendClientInvitePayload

		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}

		return p, nil
	default:
		return nil, ErrInvalidJobType
	}
}
