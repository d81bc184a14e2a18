package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/hupe1980/clustr/dense"
	"github.com/spf13/cobra"
)

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func readMatrix(cmd *cobra.Command, path string) (dense.Matrix[float64], error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return dense.Matrix[float64]{}, err
	}
	defer func() { _ = r.Close() }()

	m, err := dense.ReadCSV[float64](bufio.NewReader(r))
	if err != nil {
		return dense.Matrix[float64]{}, fmt.Errorf("read %s: %w", path, err)
	}
	return m, nil
}

func writeMatrix(cmd *cobra.Command, path string, m dense.Matrix[float64]) error {
	w, err := createOutput(cmd, path)
	if err != nil {
		return err
	}
	if err := dense.WriteCSV(w, m); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Close()
}

func readLabels(cmd *cobra.Command, path string) ([]int, error) {
	r, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	cr := csv.NewReader(bufio.NewReader(r))
	cr.Comment = '#'
	cr.FieldsPerRecord = 1
	cr.TrimLeadingSpace = true

	var labels []int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return labels, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		l, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("read %s: line %d: %w", path, len(labels)+1, err)
		}
		labels = append(labels, l)
	}
}

func writeLabels(cmd *cobra.Command, path string, labels []int) error {
	w, err := createOutput(cmd, path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, l := range labels {
		bw.WriteString(strconv.Itoa(l))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
