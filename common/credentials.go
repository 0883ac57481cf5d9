package common

import (
	"context"
	"fmt"
	"sync"

	tm_vault "github.com/traymetrics/traymetrics/vault"
	"go.uber.org/zap"
)

var (
	BMCCreds = BMCCredentials{}

	log *zap.Logger
)

// BMCCredentials holds the single credential pair used against the BMC for
// the process lifetime. When a vault client is configured the pair can be
// refreshed after a rotation, otherwise the statically configured values in
// the config package are used instead.
type BMCCredentials struct {
	mu    sync.Mutex
	cred  *Credential
	Vault *tm_vault.Vault
}

type Credential struct {
	User string
	Pass string
}

func (c *BMCCredentials) Get() (*Credential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cred == nil {
		return nil, false
	}
	return c.cred, true
}

func (c *BMCCredentials) Set(value *Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = value
}

// Refresh fetches the latest credential pair from vault and caches it.
func (c *BMCCredentials) Refresh(ctx context.Context) (*Credential, error) {
	var ok bool
	var user, pass string

	log = zap.L()

	if c.Vault == nil {
		return nil, fmt.Errorf("vault client not configured")
	}

	props := c.Vault.SecretProps
	secret, err := c.Vault.GetKVSecret(ctx, props)
	if err != nil {
		log.Error("issue retrieving BMC credentials from vault", zap.Error(err))
		return nil, fmt.Errorf("issue retrieving BMC credentials from vault - %v", err)
	}

	if user, ok = secret.Data[props.UserField].(string); !ok {
		return nil, fmt.Errorf("the secret retrieved from vault is missing the %q field", props.UserField)
	}

	if pass, ok = secret.Data[props.PasswordField].(string); !ok {
		return nil, fmt.Errorf("the secret retrieved from vault is missing the %q field", props.PasswordField)
	}

	credential := &Credential{
		User: user,
		Pass: pass,
	}
	c.Set(credential)

	return credential, nil
}
