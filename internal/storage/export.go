package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Steps  int         `json:"steps"`
	Frames []Frame     `json:"frames"`
}

func ExportJSON(path string, meta *RunMetadata, frames []Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, frames)
}

func WriteJSON(w io.Writer, meta *RunMetadata, frames []Frame) error {
	data := ExportData{
		Run:    *meta,
		Steps:  len(frames),
		Frames: frames,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
