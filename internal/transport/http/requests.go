package httptransport

import "time"

type createRecordRequest struct {
	SubjectName     string    `json:"subject_name"`
	EventStart      time.Time `json:"event_start"`
	EventEnd        time.Time `json:"event_end"`
	Location        string    `json:"location"`
	ProofCommitment string    `json:"proof_commitment"`
	Owner           string    `json:"owner"`
}

type createIdentityRecordRequest struct {
	SubjectName     string    `json:"subject_name"`
	EventStart      time.Time `json:"event_start"`
	EventEnd        time.Time `json:"event_end"`
	Location        string    `json:"location"`
	ProofCommitment string    `json:"proof_commitment"`
	NationalID      string    `json:"national_id"`
	AuxiliaryRef    string    `json:"auxiliary_ref"`
}

type attachMemorialRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	References  []string `json:"references"`
}

type roleRequest struct {
	Role    string `json:"role"`
	Account string `json:"account"`
}

type bindRequest struct {
	NationalID string `json:"national_id"`
	Account    string `json:"account"`
}

type transferRequest struct {
	To string `json:"to"`
}
