package errors

// ExitCodeFor maps an error to a process exit code. Categories group into
// usage errors, input errors, and build errors so scripts can distinguish
// "fix your config" from "fix your documents".
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	switch CategoryOf(err) {
	case CategoryConfig, CategoryValidation:
		return 2
	case CategoryParse, CategoryEncoding:
		return 3
	case CategoryNotFound, CategoryRender:
		return 4
	case CategoryFileSystem:
		return 5
	default:
		return 1
	}
}
