package handlers

import (
	"testing"

	"github.com/ormasoftchile/jetforge/internal/inventory"
)

func TestRecordThenShouldRun(t *testing.T) {
	host := inventory.NewHost("web1")
	Record(host, 1, "restart-nginx")
	if !ShouldRun(host, 1, "restart-nginx") {
		t.Error("want ShouldRun true after Record in the same play")
	}
}

func TestShouldRunFalseWithoutNotify(t *testing.T) {
	host := inventory.NewHost("web1")
	if ShouldRun(host, 1, "restart-nginx") {
		t.Error("want ShouldRun false when never notified")
	}
}

func TestNotificationsAreScopedToTheirPlay(t *testing.T) {
	host := inventory.NewHost("web1")
	Record(host, 1, "restart-nginx")
	if ShouldRun(host, 2, "restart-nginx") {
		t.Error("a play-1 notification must not be visible to play 2")
	}
}

func TestDropNotificationsClearsThePartition(t *testing.T) {
	host := inventory.NewHost("web1")
	Record(host, 1, "restart-nginx")
	host.DropNotifications(1)
	if ShouldRun(host, 1, "restart-nginx") {
		t.Error("want ShouldRun false after the play-1 partition is dropped")
	}
}
