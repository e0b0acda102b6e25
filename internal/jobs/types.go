package jobs

type JobType string

const (
	JobSendClientInvite JobType = "send_client_invite"
)

func (t JobType) IsValid() bool {
	switch t {
	case JobSendClientInvite:
		return true
	default:
		return false
	}
}
