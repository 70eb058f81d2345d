package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"io"

	gossh "golang.org/x/crypto/ssh"
)

// KeyPair holds an ed25519 key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the private key in PEM-encoded OpenSSH format.
	PrivateKey []byte
	// PublicKey is the public key in authorized_keys format.
	PublicKey []byte
}

// GenerateEd25519KeyPair generates a key pair whose public half carries comment.
// A nil random source uses crypto/rand.
func GenerateEd25519KeyPair(random io.Reader, comment string) (*KeyPair, error) {
	if random == nil {
		random = rand.Reader
	}

	pub, priv, err := ed25519.GenerateKey(random)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	block, err := gossh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	sshPub, err := gossh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: pem.EncodeToMemory(block),
		PublicKey:  authorizedKey(sshPub, comment),
	}, nil
}

// PublicKeyFromPrivate derives the authorized_keys line for an existing
// unencrypted private key. Encrypted keys return *gossh.PassphraseMissingError.
func PublicKeyFromPrivate(privateKey []byte, comment string) ([]byte, error) {
	signer, err := gossh.ParsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return authorizedKey(signer.PublicKey(), comment), nil
}

func authorizedKey(pub gossh.PublicKey, comment string) []byte {
	authorized := gossh.MarshalAuthorizedKey(pub)
	if comment != "" {
		// MarshalAuthorizedKey ends with a newline and never writes a comment
		authorized = append(authorized[:len(authorized)-1], []byte(" "+comment+"\n")...)
	}
	return authorized
}
