package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that allocates Mats")
	}

	frame1 := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	frame2 := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() before Open: error = %v, want ErrCameraNotOpen", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !cam.IsOpen() {
		t.Error("IsOpen() = false after Open")
	}

	for i := 0; i < 2; i++ {
		frame, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		frame.Close()
	}

	// Non-looping playback runs out after the last frame.
	if _, err := cam.ReadFrame(); err == nil {
		t.Error("ReadFrame() after last frame should fail without loop")
	}

	if err := cam.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() = true after Close")
	}
}

func TestMockCamera_Loop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that allocates Mats")
	}

	frame := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	if cam.FPS() != DefaultFPS {
		t.Errorf("FPS() = %d, want %d", cam.FPS(), DefaultFPS)
	}

	cam.SetFPS(15)
	if cam.FPS() != 15 {
		t.Errorf("FPS() = %d after SetFPS(15), want 15", cam.FPS())
	}

	cam.SetFPS(0)
	if cam.FPS() != 15 {
		t.Errorf("FPS() = %d after SetFPS(0), want unchanged 15", cam.FPS())
	}
}

func TestMotionDetector_FirstFrameIsBaseline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that allocates Mats")
	}

	m := NewMotionDetector(1.0)
	defer m.Close()

	frame := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	detected, percent := m.Detect(&frame)
	if detected || percent != 0 {
		t.Errorf("Detect(first frame) = (%v, %f), want (false, 0)", detected, percent)
	}

	// Identical second frame: no motion.
	detected, _ = m.Detect(&frame)
	if detected {
		t.Error("Detect(identical frame) = true, want false")
	}
}

func TestMotionDetector_NilFrame(t *testing.T) {
	m := NewMotionDetector(1.0)
	defer m.Close()

	if detected, _ := m.Detect(nil); detected {
		t.Error("Detect(nil) = true, want false")
	}
}
