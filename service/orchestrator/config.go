package orchestrator

// Routing identifies the engine-side users and groups tasks are routed to
// when a claim has no explicit assignee.
type Routing struct {
	DefaultAdjuster string `json:"defaultAdjuster" yaml:"defaultAdjuster"`
	DamageAssessor  string `json:"damageAssessor" yaml:"damageAssessor"`
	ApproverGroup   string `json:"approverGroup" yaml:"approverGroup"`
	PaymentOfficer  string `json:"paymentOfficer" yaml:"paymentOfficer"`
	PaymentManager  string `json:"paymentManager" yaml:"paymentManager"`
}

// DefaultRouting returns the routing identities used unless configured
// otherwise.
func DefaultRouting() Routing {
	return Routing{
		DefaultAdjuster: "admin",
		DamageAssessor:  "admin",
		ApproverGroup:   "managers",
		PaymentOfficer:  "finance",
		PaymentManager:  "managers",
	}
}
