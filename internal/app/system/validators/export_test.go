package validators

// Unexported helpers used by the external test package.
var (
	CollectionExists = collectionExists
	EnsureCollection = ensureCollection
)
