package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/weinfuse_backend/config"
	"bitbucket.org/mmdatafocus/weinfuse_backend/models"
	"github.com/shopspring/decimal"
)

func TestStagingUpsertIsIdempotent(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "weinfuse_test")

	config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	record := models.StagingRecord{
		LineId:       "88311",
		Status:       models.StatusReceived,
		CustomerId:   11,
		LocationId:   22,
		ShipToId:     33,
		ItemId:       44,
		CustomerName: "C029H Main Clinic",
		LocationName: "L0404 North Annex",
		Ndc:          "00074-3799-13",
		Unit:         "EA",
		Quantity:     decimal.NewFromInt(4),
		Price:        decimal.RequireFromString("125.50"),
		SyncRunId:    1,
	}

	created, err := models.UpsertStagingRecord(ctx, &record)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Fatalf("first upsert must create")
	}

	// Re-run the same line with a changed status; must update in place.
	second := record
	second.ID = 0
	second.Status = models.StatusItemNotFound
	second.SyncRunId = 2
	created, err = models.UpsertStagingRecord(ctx, &second)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatalf("second upsert must update, not create")
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&models.StagingRecord{}).Where("line_id = ?", "88311").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row per line id; got %d", count)
	}

	var stored models.StagingRecord
	if err := db.WithContext(ctx).Where("line_id = ?", "88311").Take(&stored).Error; err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if stored.Status != models.StatusItemNotFound || stored.SyncRunId != 2 {
		t.Fatalf("row not refreshed: status=%d run=%d", stored.Status, stored.SyncRunId)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("weinfuse-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=weinfuse_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
