package service

// CodeGenerator produces opaque random codes for email links.
type CodeGenerator interface {
	Generate() (string, error)
}
