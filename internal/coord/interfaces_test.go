package coord

import (
	"context"
	"errors"
	"testing"

	"github.com/splitmind/a2amcp/internal/domain"
)

const userDef = "interface User { id: string; email: string }"

func TestRegisterAndQueryInterface(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "p1", "task-auth")
	if err := svc.RegisterInterface(ctx, "p1", "task-auth", "User", userDef, "src/types.ts"); err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}

	def, similar, err := svc.QueryInterface(ctx, "p1", "User")
	if err != nil {
		t.Fatalf("QueryInterface: %v", err)
	}
	if similar != nil {
		t.Errorf("exact hit should carry no suggestions, got %v", similar)
	}
	if def.Definition != userDef || def.RegisteredBy != "task-auth" || def.FilePath != "src/types.ts" {
		t.Errorf("unexpected definition: %+v", def)
	}
	if def.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestQueryInterfaceSuggestsSimilar(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "p1", "task-auth")
	for _, name := range []string{"UserProfile", "UserSettings", "Order"} {
		if err := svc.RegisterInterface(ctx, "p1", "task-auth", name, "interface "+name+" {}", ""); err != nil {
			t.Fatalf("RegisterInterface(%s): %v", name, err)
		}
	}

	_, similar, err := svc.QueryInterface(ctx, "p1", "user")
	if !errors.Is(err, ErrInterfaceNotFound) {
		t.Fatalf("QueryInterface = %v, want ErrInterfaceNotFound", err)
	}
	if len(similar) != 2 || similar[0] != "UserProfile" || similar[1] != "UserSettings" {
		t.Errorf("similar = %v, want [UserProfile UserSettings]", similar)
	}
}

func TestRegisterInterfaceOverwrites(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "p1", "task-auth")
	mustRegister(t, svc, "p1", "task-api")
	if err := svc.RegisterInterface(ctx, "p1", "task-auth", "User", "v1", ""); err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}
	if err := svc.RegisterInterface(ctx, "p1", "task-api", "User", "v2", ""); err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}

	def, _, err := svc.QueryInterface(ctx, "p1", "User")
	if err != nil {
		t.Fatalf("QueryInterface: %v", err)
	}
	if def.Definition != "v2" || def.RegisteredBy != "task-api" {
		t.Errorf("latest registration should win: %+v", def)
	}
}

func TestRegisterInterfaceAnnounces(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "p1", "task-auth")
	mustRegister(t, svc, "p1", "task-api")
	if err := svc.RegisterInterface(ctx, "p1", "task-auth", "User", userDef, ""); err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}

	event := findByType(drain(t, svc, "p1", "task-api"), domain.EventInterfaceRegistered)
	if event == nil {
		t.Fatal("other agent should receive interface_registered")
	}
	if event.Session != "task-auth" || event.InterfaceName != "User" || event.Definition != userDef {
		t.Errorf("unexpected event: %+v", event)
	}
	if findByType(drain(t, svc, "p1", "task-auth"), domain.EventInterfaceRegistered) != nil {
		t.Error("registrant should not be notified")
	}
}

func TestListInterfaces(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "p1", "task-auth")
	if err := svc.RegisterInterface(ctx, "p1", "task-auth", "User", "u", ""); err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}
	if err := svc.RegisterInterface(ctx, "p1", "task-auth", "Order", "o", ""); err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}

	defs, err := svc.ListInterfaces(ctx, "p1")
	if err != nil {
		t.Fatalf("ListInterfaces: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d interfaces, want 2", len(defs))
	}
	if defs["Order"].Definition != "o" {
		t.Errorf("unexpected Order definition: %+v", defs["Order"])
	}
}
