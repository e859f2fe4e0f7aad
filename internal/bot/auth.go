package bot

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword creates a bcrypt hash of the given password.
//
// Precondition: password must be non-empty and at most 72 bytes.
// Postcondition: Returns a bcrypt hash string.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
//
// Postcondition: Returns true if the password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ownerAuth tracks which users have proven they know the owner password.
type ownerAuth struct {
	hash string

	mu    sync.Mutex
	users map[string]struct{}
}

func newOwnerAuth(hash string) *ownerAuth {
	return &ownerAuth{hash: hash, users: make(map[string]struct{})}
}

func (a *ownerAuth) enabled() bool { return a.hash != "" }

// login records userID as an owner when password matches.
func (a *ownerAuth) login(userID, password string) bool {
	if !a.enabled() || !CheckPassword(a.hash, password) {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[userID] = struct{}{}
	return true
}

func (a *ownerAuth) logout(userID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.users, userID)
}

func (a *ownerAuth) isOwner(userID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.users[userID]
	return ok
}

func (b *Bot) cmdOwner(_ context.Context, req *Request) (Reply, error) {
	user := req.Message.AuthorID
	if !b.owners.enabled() {
		return b.reply(req.Message.ChannelID, "Owner commands are disabled."), nil
	}
	if req.Args.Len() == 0 {
		if b.owners.isOwner(user) {
			return b.reply(req.Message.ChannelID, "You are signed in as an owner."), nil
		}
		return Reply{}, ErrUsage
	}
	if req.Args.At(0) == "logout" {
		b.owners.logout(user)
		return b.reply(req.Message.ChannelID, "Signed out."), nil
	}
	if !b.owners.login(user, req.RawArgs) {
		b.logger.Info("owner login rejected", zap.String("user_id", user))
		return b.reply(req.Message.ChannelID, "Sorry, that password is wrong."), nil
	}
	b.logger.Info("owner login", zap.String("user_id", user))
	return b.reply(req.Message.ChannelID, "Signed in as an owner."), nil
}
