/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package vault

import (
	"context"
	"fmt"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/approle"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	log *zap.Logger
)

type Parameters struct {
	// connection and credential parameters
	Address         string
	ApproleRoleID   string
	ApproleSecretID string
	CACertBytes     []byte
}

// SecretProperties describes where the BMC credential pair lives in a kv-v1
// or kv-v2 mount and which secret fields hold the username and password.
type SecretProperties struct {
	MountPath     string `yaml:"mountPath" json:"mountPath"`
	Path          string `yaml:"path" json:"path"`
	SecretName    string `yaml:"secretName" json:"secretName"`
	UserField     string `yaml:"userField" json:"userField"`
	PasswordField string `yaml:"passwordField" json:"passwordField"`
}

// ParseSecretProperties accepts the --vault.secret-properties flag payload,
// either YAML or JSON since yaml.v3 handles both.
func ParseSecretProperties(raw string) (*SecretProperties, error) {
	props := &SecretProperties{}
	if err := yaml.Unmarshal([]byte(raw), props); err != nil {
		return nil, fmt.Errorf("unable to parse secret properties: %w", err)
	}
	if props.MountPath == "" {
		return nil, fmt.Errorf("secret properties missing mountPath")
	}
	if props.UserField == "" || props.PasswordField == "" {
		return nil, fmt.Errorf("secret properties missing userField or passwordField")
	}
	return props, nil
}

// SecretPath joins the configured path elements into the lookup key.
func (p *SecretProperties) SecretPath() string {
	if p.Path != "" && p.SecretName != "" {
		return fmt.Sprintf("%s/%s", p.Path, p.SecretName)
	}
	if p.Path != "" {
		return p.Path
	}
	return p.SecretName
}

type Vault struct {
	mu          sync.RWMutex
	client      *vault.Client
	Parameters  Parameters
	SecretProps *SecretProperties
	isLoggedIn  bool
}

// NewVaultAppRoleClient builds a Vault client configured for the AppRole
// authentication method. Login happens inside the RenewToken loop so a vault
// outage at startup degrades to retries instead of a failed boot.
func NewVaultAppRoleClient(ctx context.Context, parameters Parameters, props *SecretProperties) (*Vault, error) {
	config := vault.DefaultConfig()
	config.Address = parameters.Address
	if len(parameters.CACertBytes) > 0 {
		if err := config.ConfigureTLS(&vault.TLSConfig{
			CACertBytes: parameters.CACertBytes,
		}); err != nil {
			return nil, fmt.Errorf("unable to configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize vault client: %w", err)
	}

	v := &Vault{
		client:      client,
		Parameters:  parameters,
		SecretProps: props,
	}

	return v, nil
}

// A combination of a RoleID and a SecretID is required to log into Vault
// with AppRole authentication method.
func (v *Vault) login(ctx context.Context) (*vault.Secret, error) {
	v.mu.RLock()
	roleId := v.Parameters.ApproleRoleID
	secretId := v.Parameters.ApproleSecretID
	v.mu.RUnlock()

	appRoleAuth, err := approle.NewAppRoleAuth(
		roleId,
		&approle.SecretID{FromString: secretId},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize approle authentication method: %w", err)
	}

	authInfo, err := v.client.Auth().Login(ctx, appRoleAuth)
	if err != nil {
		return nil, fmt.Errorf("unable to login using approle auth method: %w", err)
	}

	return authInfo, nil
}

// GetKVSecret fetches the latest version of the credential secret from a
// kv-v1 or kv-v2 mount.
func (v *Vault) GetKVSecret(ctx context.Context, props *SecretProperties) (*vault.KVSecret, error) {
	var kvSecret *vault.KVSecret
	var err error

	secretPath := props.SecretPath()

	if props.MountPath != "kv2" {
		kvSecret, err = v.client.KVv1(props.MountPath).Get(ctx, secretPath)
	} else {
		kvSecret, err = v.client.KVv2(props.MountPath).Get(ctx, secretPath)
	}

	if err != nil {
		return kvSecret, fmt.Errorf("unable to read secret: %w", err)
	}

	return kvSecret, nil
}

func wait(sleepTime time.Duration, c chan bool) {
	time.Sleep(sleepTime)
	c <- true
}

func (v *Vault) IsLoggedIn() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.isLoggedIn
}

func (v *Vault) setLoggedIn(b bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.isLoggedIn = b
}

// RenewToken keeps an authenticated session alive for the process lifetime,
// re-attempting login every 10s while vault is unreachable.
func (v *Vault) RenewToken(ctx context.Context, doneRenew, tokenLifecycle chan bool, wg *sync.WaitGroup) {
	log = zap.L()
	retry := make(chan bool, 1)
	defer wg.Done()
	retry <- true

	for {
		select {
		case <-doneRenew:
			log.Info("stopping renew token go routine")
			return
		case <-retry:
			vaultLoginResp, err := v.login(ctx)
			if err != nil {
				log.Error("unable to authenticate to vault", zap.Error(err))
				v.setLoggedIn(false)
				go wait(10*time.Second, retry)
			} else {
				wg.Add(1)
				v.setLoggedIn(true)
				tokenErr := v.manageTokenLifecycle(ctx, vaultLoginResp, tokenLifecycle, wg)
				if tokenErr != nil {
					log.Error("unable to start managing token lifecycle", zap.Error(tokenErr))
				}
			}
		}
	}
}

// Starts token lifecycle management. Returns only fatal errors as errors,
// otherwise returns nil so we can attempt login again.
func (v *Vault) manageTokenLifecycle(ctx context.Context, token *vault.Secret, done chan bool, wg *sync.WaitGroup) error {
	var renewal *vault.RenewOutput

	log = zap.L()

	if token.Auth != nil && !token.Auth.Renewable {
		log.Info("token is not configured to be renewable. re-attempting login")
		return nil
	}

	watcher, err := v.client.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
		Secret:    token,
		Increment: token.LeaseDuration / 2,
	})
	if err != nil {
		return fmt.Errorf("unable to initialize new lifetime watcher for renewing auth token: %w", err)
	}

	go watcher.Start()
	defer wg.Done()
	defer func() {
		log.Info("revoking token before app shutdown")
		err := v.client.Auth().Token().RevokeSelfWithContext(ctx, v.client.Token())
		if err != nil {
			log.Error("unable to revoke token", zap.Error(err))
		}
	}()
	defer watcher.Stop()

	for {
		select {
		case <-done:
			log.Info("stopping token watcher go routine")
			return nil
		// `DoneCh` will return if renewal fails, or if the remaining lease
		// duration is under a built-in threshold and either renewing is not
		// extending it or renewing is disabled.
		case err := <-watcher.DoneCh():
			if err != nil {
				log.Error("failed to renew token. re-attempting login", zap.Error(err))
				return nil
			}
			// This occurs once the token has reached max TTL.
			log.Info("token can no longer be renewed. re-attempting login")
			return nil

		case renewal = <-watcher.RenewCh():
			v.client.SetToken(renewal.Secret.Auth.ClientToken)
			log.Debug("successfully renewed vault auth token")
		}
	}
}
