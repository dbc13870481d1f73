package ports

// Authorizer decides whether subjectID may act on resources owned by ownerID.
type Authorizer interface {
	Authorize(subjectID, ownerID string) error
}
