package multiparty_test

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"sync"
	"testing"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
	"rolechain/internal/protocol/multiparty"
)

func makeRoot(t *testing.T, label string) *keytree.KeyNode {
	t.Helper()
	entropy := sha256.Sum256([]byte(label))
	root, _, err := keytree.CreateRoot(bytes.NewReader(entropy[:]), "")
	if err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}
	return root
}

func makeChild(t *testing.T, parent *keytree.KeyNode, index uint32) *keytree.KeyNode {
	t.Helper()
	child, err := parent.DeriveChild(index)
	if err != nil {
		t.Fatalf("DeriveChild(%d): %v", index, err)
	}
	return child
}

func TestEncryptDecrypt_HelloScenario(t *testing.T) {
	r := makeRoot(t, "R")
	a := makeChild(t, r, 0)
	b := makeChild(t, r, 1)
	c := makeRoot(t, "C")

	rec, err := multiparty.Encrypt(a, []byte("hello"), []domain.Address{b.Address()})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := multiparty.Decrypt(b, rec, a.Address())
	if err != nil {
		t.Fatalf("Decrypt(B): %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Decrypt(B) = %q", got)
	}
	if _, err := multiparty.Decrypt(c, rec, a.Address()); !errors.Is(err, domain.ErrNotARecipient) {
		t.Fatalf("Decrypt(C): want ErrNotARecipient, got %v", err)
	}
	// The sender is not a recipient unless it asked to be.
	if _, err := multiparty.Decrypt(a, rec, a.Address()); !errors.Is(err, domain.ErrNotARecipient) {
		t.Fatalf("Decrypt(A): want ErrNotARecipient, got %v", err)
	}
}

func TestEncryptDecrypt_EveryRecipient(t *testing.T) {
	r := makeRoot(t, "many")
	sender := makeChild(t, r, 100)
	var recipients []*keytree.KeyNode
	var addrs []domain.Address
	for i := uint32(0); i < 6; i++ {
		n := makeChild(t, r, i)
		recipients = append(recipients, n)
		addrs = append(addrs, n.Address())
	}
	// A duplicate must not produce a second wrapped key.
	addrs = append(addrs, addrs[2])

	msg := bytes.Repeat([]byte("payload "), 512)
	rec, err := multiparty.Encrypt(sender, msg, addrs)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(rec.Recipients) != 6 {
		t.Fatalf("Recipients = %d, want 6", len(rec.Recipients))
	}
	for i, n := range recipients {
		got, err := multiparty.Decrypt(n, rec, sender.Address())
		if err != nil {
			t.Fatalf("recipient %d: %v", i, err)
		}
		if !bytes.Equal(got, msg) {
			t.Fatalf("recipient %d: plaintext mismatch", i)
		}
	}
}

func TestEncrypt_Recipients(t *testing.T) {
	r := makeRoot(t, "self")
	sender := makeChild(t, r, 0)

	if _, err := multiparty.Encrypt(sender, []byte("x"), nil); !errors.Is(err, domain.ErrNoRecipients) {
		t.Fatalf("empty recipients: want ErrNoRecipients, got %v", err)
	}
	rec, err := multiparty.Encrypt(sender, []byte("note to self"), nil, multiparty.WithSelf())
	if err != nil {
		t.Fatalf("Encrypt(WithSelf): %v", err)
	}
	got, err := multiparty.Decrypt(sender, rec, sender.Address())
	if err != nil || string(got) != "note to self" {
		t.Fatalf("Decrypt(self) = %q, %v", got, err)
	}
	if _, err := multiparty.Encrypt(sender.Neuter(), []byte("x"), []domain.Address{sender.Address()}); !errors.Is(err, domain.ErrNoPrivateKey) {
		t.Fatalf("neutered sender: want ErrNoPrivateKey, got %v", err)
	}
	if _, err := multiparty.Encrypt(sender, []byte("x"), []domain.Address{"nope"}); !errors.Is(err, domain.ErrInvalidAddress) {
		t.Fatalf("bad recipient: want ErrInvalidAddress, got %v", err)
	}
}

func TestDecrypt_TamperIsAuthenticationFailure(t *testing.T) {
	r := makeRoot(t, "tamper")
	sender := makeChild(t, r, 0)
	recv := makeChild(t, r, 1)
	outsider := makeRoot(t, "outsider")

	rec, err := multiparty.Encrypt(sender, []byte("integrity"), []domain.Address{recv.Address()})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	flip := func(b []byte, bit int) []byte {
		c := bytes.Clone(b)
		c[bit/8] ^= 1 << (bit % 8)
		return c
	}
	for bit := 0; bit < len(rec.Ciphertext)*8; bit++ {
		bad := rec
		bad.Ciphertext = flip(rec.Ciphertext, bit)
		for _, who := range []*keytree.KeyNode{recv, outsider} {
			if _, err := multiparty.Decrypt(who, bad, sender.Address()); !errors.Is(err, domain.ErrAuthenticationFailed) {
				t.Fatalf("ciphertext bit %d: want ErrAuthenticationFailed, got %v", bit, err)
			}
		}
	}
	for bit := 0; bit < len(rec.Authenticator)*8; bit++ {
		bad := rec
		bad.Authenticator = flip(rec.Authenticator, bit)
		if _, err := multiparty.Decrypt(recv, bad, sender.Address()); !errors.Is(err, domain.ErrAuthenticationFailed) {
			t.Fatalf("authenticator bit %d: want ErrAuthenticationFailed, got %v", bit, err)
		}
	}

	bad := rec
	bad.Recipients = []domain.Address{outsider.Address()}
	if _, err := multiparty.Decrypt(recv, bad, sender.Address()); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("swapped recipients: want ErrAuthenticationFailed, got %v", err)
	}
	if _, err := multiparty.Decrypt(recv, rec, outsider.Address()); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("wrong sender: want ErrAuthenticationFailed, got %v", err)
	}
	if _, err := multiparty.Decrypt(recv, rec, "garbage"); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("unparsable sender: want ErrAuthenticationFailed, got %v", err)
	}
}

func TestDecrypt_NeuteredReceiver(t *testing.T) {
	r := makeRoot(t, "neutered")
	sender := makeChild(t, r, 0)
	recv := makeChild(t, r, 1)
	rec, err := multiparty.Encrypt(sender, []byte("x"), []domain.Address{recv.Address()})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := multiparty.Decrypt(recv.Neuter(), rec, sender.Address()); !errors.Is(err, domain.ErrNoPrivateKey) {
		t.Fatalf("want ErrNoPrivateKey, got %v", err)
	}
}

func TestEncryptDecrypt_Parallel(t *testing.T) {
	r := makeRoot(t, "parallel")
	sender := makeChild(t, r, 0)
	recv := makeChild(t, r, 1)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := []byte{byte(i), byte(i >> 8), 'm'}
			rec, err := multiparty.Encrypt(sender, msg, []domain.Address{recv.Address()})
			if err != nil {
				errs <- err
				return
			}
			got, err := multiparty.Decrypt(recv, rec, sender.Address())
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got, msg) {
				errs <- errors.New("plaintext mismatch")
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("parallel round-trip: %v", err)
	}
}
