package entities

// IdentityKind tags the resolved caller identity. The kind is resolved once
// at session establishment and never re-derived from loosely-typed session
// metadata downstream.
type IdentityKind string

const (
	IdentityKindStaff  IdentityKind = "staff"
	IdentityKindClient IdentityKind = "client"
)

// Identity is the request-scoped authenticated caller. Elevated is set only
// by the identity provider for global administrators; queries addressing
// another tenant's data must check it explicitly.
type Identity struct {
	Kind      IdentityKind `json:"kind"`
	SubjectID string       `json:"subject_id"`
	TenantID  string       `json:"tenant_id"`
	Elevated  bool         `json:"elevated"`
}

// StaffIdentity builds a staff identity for the given tenant.
func StaffIdentity(subjectID, tenantID string, elevated bool) Identity {
	return Identity{Kind: IdentityKindStaff, SubjectID: subjectID, TenantID: tenantID, Elevated: elevated}
}

// ClientIdentity builds a client identity for the given tenant.
func ClientIdentity(subjectID, tenantID string) Identity {
	return Identity{Kind: IdentityKindClient, SubjectID: subjectID, TenantID: tenantID}
}

// CanAccessTenant reports whether the identity may address data owned by the
// given tenant.
func (i Identity) CanAccessTenant(tenantID string) bool {
	if i.Elevated {
		return true
	}
	return i.TenantID == tenantID
}
