package utils

// DoesNotExist marks a missing local index, e.g. a basis function that is not
// in a weight function's support list.
const DoesNotExist = -1
