package entities

// IntegrityReport is the outcome of verifying a package file
type IntegrityReport struct {
	Path              string
	Checksum          string // SHA-256 of the file, hex
	ChecksumFile      string // sidecar the checksum was compared with, if any
	ChecksumVerified  bool
	SignatureFile     string
	Signer            string
	SignatureVerified bool
}
