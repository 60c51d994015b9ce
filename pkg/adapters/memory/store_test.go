package memory_test

import (
	"testing"

	"github.com/stewardhq/steward/pkg/adapters/memory"
	"github.com/stewardhq/steward/pkg/ports/portstest"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	portstest.RunStateStoreContract(t, store)
}
