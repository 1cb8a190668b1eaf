package domain

// KeyPrefix namespaces every key prodsearch writes to a shared cache store.
const KeyPrefix = "prodsearch:"
