package lifecycle

import (
	"fmt"
	"slices"
	"strings"
)

// JobRole is the position a candidate applied for. It decides which
// documents are required.
type JobRole string

const (
	JobAdministrativeAssistant JobRole = "administrativeAssistant"
	JobCommunityHealthAgent    JobRole = "communityHealthAgent"
	JobDriver                  JobRole = "driver"
	JobNurse                   JobRole = "nurse"
	JobSocialWorker            JobRole = "socialWorker"
	JobTechnician              JobRole = "technician"
)

var allJobRoles = []JobRole{
	JobAdministrativeAssistant,
	JobCommunityHealthAgent,
	JobDriver,
	JobNurse,
	JobSocialWorker,
	JobTechnician,
}

// JobRoles returns every declared job role.
func JobRoles() []JobRole { return slices.Clone(allJobRoles) }

// Document is a supporting document checked during screening.
type Document string

const (
	DocIdentity                 Document = "identity"
	DocTaxID                    Document = "taxId"
	DocProofOfAddress           Document = "proofOfAddress"
	DocEducationCertificate     Document = "educationCertificate"
	DocResume                   Document = "resume"
	DocDriverLicense            Document = "driverLicense"
	DocProfessionalRegistration Document = "professionalRegistration"
	DocTechnicalCertificate     Document = "technicalCertificate"
	DocResidenceInServiceArea   Document = "residenceInServiceArea"
	DocMedicalReport            Document = "medicalReport"
)

// Evaluation is an analyst's verdict on one document. The zero value is
// Unevaluated.
type Evaluation string

const (
	Unevaluated   Evaluation = ""
	Conforming    Evaluation = "conforming"
	NonConforming Evaluation = "nonConforming"
	NotApplicable Evaluation = "notApplicable"
)

// Valid reports whether e is a declared evaluation.
func (e Evaluation) Valid() bool {
	switch e {
	case Unevaluated, Conforming, NonConforming, NotApplicable:
		return true
	}
	return false
}

// Accepted reports whether e satisfies a requirement.
func (e Evaluation) Accepted() bool { return e == Conforming || e == NotApplicable }

// baseDocuments are required from every candidate.
var baseDocuments = []Document{
	DocIdentity,
	DocTaxID,
	DocProofOfAddress,
	DocEducationCertificate,
}

// roleDocuments lists the extra documents each job role requires. Every
// declared job role has an entry, even when it adds nothing.
var roleDocuments = map[JobRole][]Document{
	JobAdministrativeAssistant: {DocResume},
	JobCommunityHealthAgent:    {DocResidenceInServiceArea},
	JobDriver:                  {DocDriverLicense},
	JobNurse:                   {DocProfessionalRegistration},
	JobSocialWorker:            {DocProfessionalRegistration},
	JobTechnician:              {DocTechnicalCertificate},
}

// RequiredDocuments returns the documents a candidate for role must present:
// the base set, the role's set, and the medical report for PCD candidates.
func RequiredDocuments(role JobRole, pcd bool) ([]Document, error) {
	extra, ok := roleDocuments[role]
	if !ok {
		return nil, fmt.Errorf("unknown job role %q", role)
	}
	out := slices.Concat(baseDocuments, extra)
	if pcd {
		out = append(out, DocMedicalReport)
	}
	return out, nil
}

// DocumentReport splits the required documents that block classification
// by why they block it.
type DocumentReport struct {
	NonConforming []Document
	Unevaluated   []Document
}

// OK reports whether nothing blocks classification.
func (r DocumentReport) OK() bool {
	return len(r.NonConforming) == 0 && len(r.Unevaluated) == 0
}

// Reason renders the report as a disqualification reason. It is empty when
// the report is OK.
func (r DocumentReport) Reason() string {
	var parts []string
	if len(r.NonConforming) > 0 {
		parts = append(parts, "non-conforming documents: "+joinDocs(r.NonConforming))
	}
	if len(r.Unevaluated) > 0 {
		parts = append(parts, "documents not evaluated: "+joinDocs(r.Unevaluated))
	}
	return strings.Join(parts, "; ")
}

// CheckDocuments compares evaluations against the documents required for
// role and pcd.
func CheckDocuments(role JobRole, pcd bool, evals map[Document]Evaluation) (DocumentReport, error) {
	required, err := RequiredDocuments(role, pcd)
	if err != nil {
		return DocumentReport{}, err
	}
	var r DocumentReport
	for _, d := range required {
		switch evals[d] {
		case Conforming, NotApplicable:
		case NonConforming:
			r.NonConforming = append(r.NonConforming, d)
		default:
			r.Unevaluated = append(r.Unevaluated, d)
		}
	}
	return r, nil
}

func joinDocs(docs []Document) string {
	s := make([]string, len(docs))
	for i, d := range docs {
		s[i] = string(d)
	}
	return strings.Join(s, ", ")
}
