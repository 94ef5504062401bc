package indexes

// EnsureIndexSet exposes ensureIndexSet to the external test package.
var EnsureIndexSet = ensureIndexSet
