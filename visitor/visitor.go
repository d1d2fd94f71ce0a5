package visitor

// Visitor visits pairs of (key, element).
// If the callback returns (false, nil), the Visit stops.
// If the callback returns an error, the Visit stops and returns that error.
type Visitor[K any, E any] func(func(key K, element E) (bool, error)) error
