package solana

// SignatureVerifier answers whether a signature proves control of a wallet.
// The signing protocol itself lives with the wallet client; the auth service
// only consumes the boolean outcome.
type SignatureVerifier interface {
	VerifyWalletSignature(walletAddress string, message, signature []byte) (bool, error)
}

// AcceptAllVerifier accepts any non-empty signature. It mirrors the simplified
// login check the product launched with; a production deployment swaps in a
// verifier that checks the ed25519 signature against the wallet public key.
type AcceptAllVerifier struct{}

func (AcceptAllVerifier) VerifyWalletSignature(walletAddress string, message, signature []byte) (bool, error) {
	return len(signature) > 0, nil
}
