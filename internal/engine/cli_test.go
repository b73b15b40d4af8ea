package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"chessgif/internal/colors"
	"chessgif/internal/services"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	pair, err := colors.Validate("#000000", "#ffffff")
	if err != nil {
		t.Fatalf("validate colors: %v", err)
	}
	return NewConfig(pair, Defaults{
		SquareSize:      60,
		FrameDelay:      time.Second,
		FirstFrameDelay: time.Second,
		LastFrameDelay:  5 * time.Second,
	})
}

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/c2g"))
	if cli.Binary() != "/opt/c2g" {
		t.Fatalf("expected binary override to be applied, got %q", cli.Binary())
	}
	if NewCLI(WithBinary("  ")).Binary() != "c2g" {
		t.Fatal("expected blank override to keep default binary")
	}
}

func TestNewConfigUsesBufferOutput(t *testing.T) {
	cfg := testConfig(t)
	if cfg.Output != OutputBuffer {
		t.Fatalf("expected buffer output, got %s", cfg.Output)
	}
}

func TestCLIConvertRequiresColors(t *testing.T) {
	if _, err := NewCLI().Convert(context.Background(), "1. e4", Config{}); err == nil {
		t.Fatal("expected error when colors were never validated")
	}
}

func TestCLIConvertPassesFlags(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		return helperCommand(ctx, "success")
	}
	t.Cleanup(func() { commandContext = original })

	cfg := testConfig(t)
	cfg.Defaults.Flip = true
	if _, err := NewCLI().Convert(context.Background(), "1. e4 e5", cfg); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	expect := map[string]string{
		"--dark":              "#000000",
		"--light":             "#ffffff",
		"--size":              "60",
		"--delay":             "1000",
		"--first-frame-delay": "1000",
		"--last-frame-delay":  "5000",
		"--output":            "-",
	}
	for flag, value := range expect {
		idx := findArg(capturedArgs, flag)
		if idx == -1 || idx+1 >= len(capturedArgs) {
			t.Fatalf("expected %s in args %v", flag, capturedArgs)
		}
		if capturedArgs[idx+1] != value {
			t.Fatalf("expected %s %s, got %q", flag, value, capturedArgs[idx+1])
		}
	}
	if findArg(capturedArgs, "--flip") == -1 {
		t.Fatalf("expected --flip in args %v", capturedArgs)
	}
}

func TestCLIConvertSuccess(t *testing.T) {
	setHelperCommand(t, "success")

	data, err := NewCLI().Convert(context.Background(), "1. e4 e5", testConfig(t))
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if string(data) != "GIF89a:1. e4 e5" {
		t.Fatalf("unexpected output %q", data)
	}
}

func TestCLIConvertForwardsEngineMessage(t *testing.T) {
	setHelperCommand(t, "failure")

	_, err := NewCLI().Convert(context.Background(), "", testConfig(t))
	if err == nil {
		t.Fatal("expected engine failure")
	}
	if err.Error() != "empty game" {
		t.Fatalf("expected verbatim engine message, got %q", err.Error())
	}
	var engineErr *Error
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("expected external tool marker")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatal("expected process exit error to be retained")
	}
}

func TestCLIConvertSilentFailureFallsBackToExitStatus(t *testing.T) {
	setHelperCommand(t, "silent")

	_, err := NewCLI().Convert(context.Background(), "1. e4", testConfig(t))
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "exit status 3") {
		t.Fatalf("expected exit status in message, got %q", err.Error())
	}
}

func TestCLIConvertHonoursContext(t *testing.T) {
	setHelperCommand(t, "hang")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := NewCLI().Convert(ctx, "1. e4", testConfig(t))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCheckReportsMissingBinary(t *testing.T) {
	original := lookPath
	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	t.Cleanup(func() { lookPath = original })

	err := NewCLI(WithBinary("c2g-missing")).Check()
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "c2g-missing") {
		t.Fatalf("expected binary name in error, got %q", err.Error())
	}
}

func TestFuncAdapter(t *testing.T) {
	called := false
	conv := Func(func(ctx context.Context, notation string, cfg Config) ([]byte, error) {
		called = true
		return []byte(notation), nil
	})
	data, err := conv.Convert(context.Background(), "1. d4", Config{})
	if err != nil || string(data) != "1. d4" || !called {
		t.Fatalf("unexpected adapter result %q %v", data, err)
	}
}

func TestErrorWithoutCauseStillClassified(t *testing.T) {
	err := NewError("empty game")
	if err.Error() != "empty game" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("expected external tool marker")
	}
}

func helperCommand(ctx context.Context, mode string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("C2G_HELPER_MODE=%s", mode))
	return cmd
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return helperCommand(ctx, mode)
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("C2G_HELPER_MODE") {
	case "success":
		notation, _ := io.ReadAll(os.Stdin)
		fmt.Print("GIF89a:" + string(notation))
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "empty game")
		os.Exit(1)
	case "silent":
		os.Exit(3)
	case "hang":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}
