package sensor

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/spatial/r3"
)

// ServiceIdleTimeout is how long the pose service may sit unused before it
// is shut down. It is restarted on the next request.
const ServiceIdleTimeout = 30 * time.Second

// PoseService runs an external skeleton tracking process. Each frame is sent
// as a 4-byte big-endian length followed by JPEG data on stdin; the process
// answers with one JSON line on stdout.
type PoseService struct {
	script    string
	python    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewPoseService creates a service for the given script. An empty script
// path searches the default locations. The process is started lazily on
// the first call to Track.
func NewPoseService(script string) (*PoseService, error) {
	if script == "" {
		script = findServiceScript()
	}
	if script == "" {
		return nil, fmt.Errorf("pose_service.py not found")
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("pose service script: %w", err)
	}

	python := findVenvPython()
	if python == "" {
		python = "python3"
	}

	return &PoseService{script: script, python: python}, nil
}

// Track sends a frame to the service and returns the skeletons it found.
func (s *PoseService) Track(frame *gocv.Mat) ([]Skeleton, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := s.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := s.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := s.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	skeletons, err := parseServiceResponse([]byte(line))
	if err != nil {
		return nil, err
	}

	s.resetIdleTimer()
	return skeletons, nil
}

// Close shuts down the service process.
func (s *PoseService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown()
}

func (s *PoseService) ensureStarted() error {
	if s.started {
		return nil
	}

	s.cmd = exec.Command(s.python, s.script)

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	s.cmd.Stderr = os.Stderr

	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("start pose service: %w", err)
	}

	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	s.started = true

	return nil
}

func (s *PoseService) shutdown() error {
	if !s.started {
		return nil
	}

	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}

	if s.stdin != nil {
		s.stdin.Close()
	}

	err := s.cmd.Wait()
	s.started = false
	s.cmd = nil
	s.stdin = nil
	s.stdout = nil

	return err
}

func (s *PoseService) resetIdleTimer() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = time.AfterFunc(ServiceIdleTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.shutdown()
	})
}

// serviceResponse is the JSON line written by the pose service.
type serviceResponse struct {
	Skeletons []serviceSkeleton `json:"skeletons"`
}

type serviceSkeleton struct {
	User   UserID                  `json:"user"`
	Joints map[string]serviceJoint `json:"joints"`
}

type serviceJoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Confidence float64 `json:"confidence"`
}

// parseServiceResponse decodes one response line. Unknown joint names are
// dropped and skeletons without a user id are skipped.
func parseServiceResponse(line []byte) ([]Skeleton, error) {
	var resp serviceResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	known := make(map[JointType]bool, len(AllJoints))
	for _, j := range AllJoints {
		known[j] = true
	}

	skeletons := make([]Skeleton, 0, len(resp.Skeletons))
	for _, sk := range resp.Skeletons {
		if sk.User == 0 {
			continue
		}
		out := Skeleton{User: sk.User, Joints: make(map[JointType]JointPosition, len(sk.Joints))}
		for name, j := range sk.Joints {
			t := JointType(name)
			if !known[t] {
				continue
			}
			out.Joints[t] = JointPosition{
				Position:   r3.Vec{X: j.X, Y: j.Y, Z: j.Z},
				Confidence: j.Confidence,
			}
		}
		skeletons = append(skeletons, out)
	}
	return skeletons, nil
}

func findServiceScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/pose_service.py",
		"../scripts/pose_service.py",
		filepath.Join(execDir, "scripts/pose_service.py"),
		filepath.Join(os.Getenv("HOME"), ".depthpose/scripts/pose_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment
// next to the working directory, the executable or the data directory.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".depthpose/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}
