package blob

import "context"

type Cipher interface {
	Encrypt(plain []byte) ([]byte, error)
	Decrypt(sealed []byte) ([]byte, error)
}

// Encrypted seals objects before they reach the wrapped storage.
type Encrypted struct {
	Storage Storage
	Cipher  Cipher
}

func (e Encrypted) Put(ctx context.Context, key, contentType string, data []byte) error {
	sealed, err := e.Cipher.Encrypt(data)
	if err != nil {
		return err
	}
	return e.Storage.Put(ctx, key, "application/octet-stream", sealed)
}

func (e Encrypted) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := e.Storage.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return e.Cipher.Decrypt(sealed)
}
