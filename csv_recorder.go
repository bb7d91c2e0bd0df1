package simnet

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// CSVRecorder writes U and V as comma-delimited files, one file pair per
// instance and one row per (time index, node, compartment or dimension), adapted directly from the teacher's
// CSVLogger (NewFile/AppendToFile, bytes.Buffer row assembly) but
// generalized from genotype/status/transmission rows to compartment-count
// and continuous-state rows.
type CSVRecorder struct {
	instanceID int
	uPath      string
	vPath      string
	nd         int

	uBuf bytes.Buffer
	vBuf bytes.Buffer
}

// NewCSVRecorder creates a recorder writing to basepath.<instance>.u.csv and
// (if nd > 0) basepath.<instance>.v.csv.
func NewCSVRecorder(basepath string, instance, nd int) (*CSVRecorder, error) {
	r := &CSVRecorder{instanceID: instance, nd: nd}
	r.uPath = strings.TrimSuffix(basepath, ".") + fmt.Sprintf(".%03d.u.csv", instance)
	if err := NewFile(r.uPath, []byte("time_index,node,compartment,count\n")); err != nil {
		return nil, err
	}
	if nd > 0 {
		r.vPath = strings.TrimSuffix(basepath, ".") + fmt.Sprintf(".%03d.v.csv", instance)
		if err := NewFile(r.vPath, []byte("time_index,node,dimension,value\n")); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RecordNode implements Recorder.
func (r *CSVRecorder) RecordNode(k int, t float64, nodeIndex int, u []int, v []float64) {
	for c, count := range u {
		fmt.Fprintf(&r.uBuf, "%d,%d,%d,%d\n", k, nodeIndex, c, count)
	}
	for d, val := range v {
		fmt.Fprintf(&r.vBuf, "%d,%d,%d,%g\n", k, nodeIndex, d, val)
	}
}

// Flush appends buffered rows to disk and resets the buffers, mirroring the
// teacher's per-call AppendToFile pattern.
func (r *CSVRecorder) Flush() error {
	if r.uBuf.Len() > 0 {
		if err := AppendToFile(r.uPath, r.uBuf.Bytes()); err != nil {
			return err
		}
		r.uBuf.Reset()
	}
	if r.nd > 0 && r.vBuf.Len() > 0 {
		if err := AppendToFile(r.vPath, r.vBuf.Bytes()); err != nil {
			return err
		}
		r.vBuf.Reset()
	}
	return nil
}

// NewFile creates a new file at path if it does not already exist,
// writing b as its initial contents. Adapted verbatim from the teacher's
// logger.go helper of the same name.
func NewFile(path string, b []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	return f.Sync()
}

// AppendToFile creates path if needed and appends b, adapted verbatim from
// the teacher's logger.go helper of the same name.
func AppendToFile(path string, b []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	return f.Sync()
}
