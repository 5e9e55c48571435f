package lint

import (
	"strings"

	"github.com/p33ves/synlint/internal/workspace"
)

// secretStoreTypes lists linked service types that ARE the secret store;
// they hold no credentials of their own to relocate.
var secretStoreTypes = map[string]bool{
	"AzureKeyVault": true,
}

// workspaceDefaultMarker appears in the reserved names Synapse gives the
// linked services it provisions with the workspace (e.g.
// "<workspace>-WorkspaceDefaultStorage"). Their auth is managed for us.
const workspaceDefaultMarker = "-WorkspaceDefault"

// lacksSecretReference reports whether a linked service embeds credential
// material without any secret-store indirection.
//
// Every entry of the type-property bag is scanned; a service may expose
// alternate auth modes as separate entries, and one compliant entry clears
// the verdict for the whole service. An entry is compliant when its value
// contains a secret-reference field or an explicit anonymous-auth marker.
func lacksSecretReference(ls *workspace.LinkedService) bool {
	if secretStoreTypes[ls.Type] {
		return false
	}

	if strings.Contains(ls.Resource.Name, workspaceDefaultMarker) {
		return false
	}

	for _, entry := range ls.TypeProperties {
		if containsSecretReference(entry) || containsAnonymousAuth(entry) {
			return false
		}
	}

	return true
}

// containsSecretReference walks a property value looking for a key-vault
// secret indirection: a "secretName" field or an
// "AzureKeyVaultSecretReference" typed node.
func containsSecretReference(v interface{}) bool {
	switch val := v.(type) {
	case map[string]interface{}:
		if _, ok := val["secretName"]; ok {
			return true
		}

		if t, _ := val["type"].(string); t == "AzureKeyVaultSecretReference" {
			return true
		}

		for _, nested := range val {
			if containsSecretReference(nested) {
				return true
			}
		}
	case []interface{}:
		for _, nested := range val {
			if containsSecretReference(nested) {
				return true
			}
		}
	}

	return false
}

// containsAnonymousAuth walks a property value looking for an explicit
// anonymous-authentication marker.
func containsAnonymousAuth(v interface{}) bool {
	switch val := v.(type) {
	case string:
		return val == "Anonymous"
	case map[string]interface{}:
		if t, _ := val["authenticationType"].(string); t == "Anonymous" {
			return true
		}

		for _, nested := range val {
			if containsAnonymousAuth(nested) {
				return true
			}
		}
	case []interface{}:
		for _, nested := range val {
			if containsAnonymousAuth(nested) {
				return true
			}
		}
	}

	return false
}
