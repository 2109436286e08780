package serializer

// StdoutURI is the special output path meaning stdout.
const StdoutURI = "-"
