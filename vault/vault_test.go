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
	"os"
	"testing"

	"github.com/hashicorp/go-hclog"
	vaultapi "github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/sdk/helper/testcluster/docker"
	"github.com/stretchr/testify/assert"
)

func Test_ParseSecretProperties(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name    string
		raw     string
		want    *SecretProperties
		wantErr bool
	}{
		{
			name: "yaml form",
			raw: `
mountPath: "kv2"
path: "bmc/lab"
secretName: "c885a"
userField: "user"
passwordField: "password"
`,
			want: &SecretProperties{
				MountPath:     "kv2",
				Path:          "bmc/lab",
				SecretName:    "c885a",
				UserField:     "user",
				PasswordField: "password",
			},
		},
		{
			name: "json form",
			raw:  `{"mountPath":"secret","path":"bmc","userField":"user","passwordField":"password"}`,
			want: &SecretProperties{
				MountPath:     "secret",
				Path:          "bmc",
				UserField:     "user",
				PasswordField: "password",
			},
		},
		{
			name:    "missing mountPath",
			raw:     `{"path":"bmc","userField":"user","passwordField":"password"}`,
			wantErr: true,
		},
		{
			name:    "missing credential fields",
			raw:     `{"mountPath":"secret","path":"bmc"}`,
			wantErr: true,
		},
		{
			name:    "garbage",
			raw:     `:{{not yaml`,
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseSecretProperties(test.raw)
			if test.wantErr {
				assert.Error(err)
				return
			}
			assert.Nil(err)
			assert.Equal(test.want, got)
		})
	}
}

func Test_SecretPath(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("bmc/lab/c885a", (&SecretProperties{Path: "bmc/lab", SecretName: "c885a"}).SecretPath())
	assert.Equal("bmc/lab", (&SecretProperties{Path: "bmc/lab"}).SecretPath())
	assert.Equal("c885a", (&SecretProperties{SecretName: "c885a"}).SecretPath())
}

func createVaultTestCluster(t *testing.T) *docker.DockerCluster {
	t.Helper()

	opts := &docker.DockerClusterOptions{
		ImageRepo: "hashicorp/vault",
		ImageTag:  "1.13.3",
	}
	opts.Logger = hclog.NewNullLogger()
	return docker.NewTestDockerCluster(t, opts)
}

// Exercises kv-v1 and kv-v2 reads against a real vault, needs a local docker
// daemon so it is opt-in.
func Test_GetKVSecret(t *testing.T) {
	if os.Getenv("VAULT_DOCKER_TESTS") == "" {
		t.Skip("set VAULT_DOCKER_TESTS to run the vault docker cluster tests")
	}

	assert := assert.New(t)
	ctx := context.Background()

	cluster := createVaultTestCluster(t)
	defer cluster.Cleanup()

	client := cluster.Nodes()[0].APIClient()

	if err := client.Sys().Mount("kv2", &vaultapi.MountInput{
		Type: "kv",
		Options: map[string]string{
			"version": "2",
		},
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := client.KVv2("kv2").Put(ctx, "bmc/c885a", map[string]interface{}{
		"user":     "admin",
		"password": "hunter2",
	}); err != nil {
		t.Fatal(err)
	}

	props := &SecretProperties{
		MountPath:     "kv2",
		Path:          "bmc",
		SecretName:    "c885a",
		UserField:     "user",
		PasswordField: "password",
	}

	v := &Vault{client: client, SecretProps: props}

	secret, err := v.GetKVSecret(ctx, props)
	assert.Nil(err)
	assert.Equal("admin", secret.Data["user"])
	assert.Equal("hunter2", secret.Data["password"])
}
