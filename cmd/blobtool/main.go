// Copyright 2024-2025 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// blobtool inspects and transforms blob column files in the wire
// format: one compressed block framing one serialized blob column.
package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daviszhen/blobvec/pkg/column"
	"github.com/daviszhen/blobvec/pkg/datatype"
	"github.com/daviszhen/blobvec/pkg/util"
)

type Config struct {
	Compression string `toml:"compression"`
	Shards      int    `toml:"shards"`
}

var runCfg = Config{
	Compression: "lz4",
	Shards:      4,
}

var defCfgFilePaths = []string{".", "etc/blobvec"}

const cfgFileName = "blobtool.toml"

func loadConfig() {
	for _, dirPath := range defCfgFilePaths {
		fpath := filepath.Join(dirPath, cfgFileName)
		if util.FileIsValid(fpath) {
			_, err := toml.DecodeFile(fpath, &runCfg)
			if err != nil {
				util.Error("load config file failed",
					zap.String("fpath", fpath),
					zap.Error(err))
				continue
			}
			break
		}
	}
}

func readColumn(path string) (*column.Blob, error) {
	block, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	payload, err := datatype.DecompressBlock(block)
	if err != nil {
		return nil, err
	}
	col := column.NewBlob()
	rest, err := datatype.BlobType{}.Deserialize(payload, col)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errors.Newf("%d trailing bytes after column payload", len(rest))
	}
	return col, nil
}

func writeColumn(path string, col *column.Blob) error {
	typ, err := datatype.ParseCompressionType(runCfg.Compression)
	if err != nil {
		return err
	}
	size := datatype.BlobType{}.GetUncompressedSerializedBytes(col)
	buf := make([]byte, size)
	rest := datatype.BlobType{}.Serialize(col, buf)
	util.AssertFunc(len(rest) == 0)
	block, err := datatype.CompressBlock(buf, typ)
	if err != nil {
		return err
	}
	return os.WriteFile(path, block, 0644)
}

func importRun(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	file, err := os.Open(in)
	if err != nil {
		return err
	}
	defer file.Close()

	col := column.NewBlob()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for scanner.Scan() {
		col.InsertData(scanner.Bytes())
	}
	if err = scanner.Err(); err != nil {
		return err
	}
	if err = writeColumn(out, col); err != nil {
		return err
	}
	util.Info("imported column",
		zap.String("out", out),
		zap.Int("rows", col.Size()),
		zap.Int("bytes", col.ByteSize()))
	return nil
}

func infoRun(cmd *cobra.Command, args []string) error {
	col, err := readColumn(args[0])
	if err != nil {
		return err
	}
	col.Protect()

	minVal, maxVal, err := column.ParallelExtremes(context.Background(), col, runCfg.Shards)
	if err != nil {
		return err
	}
	stats := column.NewDistinctStats()
	stats.Update(col, col.Size(), false)

	util.Info("column info",
		zap.String("file", args[0]),
		zap.Int("rows", col.Size()),
		zap.Int("bytes", col.ByteSize()),
		zap.ByteString("min", minVal),
		zap.ByteString("max", maxVal),
		zap.Uint64("approxDistinct", stats.Count()))
	return nil
}

func sortRun(cmd *cobra.Command, args []string) error {
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")

	col, err := readColumn(args[0])
	if err != nil {
		return err
	}
	perm := col.GetPermutation(reverse, limit)
	res, err := col.Permute(perm, limit)
	if err != nil {
		return err
	}
	return writeColumn(args[1], res)
}

func convertRun(cmd *cobra.Command, args []string) error {
	col, err := readColumn(args[0])
	if err != nil {
		return err
	}
	return writeColumn(args[1], col)
}

func main() {
	loadConfig()

	rootCmd := &cobra.Command{
		Use:           "blobtool",
		Short:         "inspect and transform blob column files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&runCfg.Compression, "compression",
		runCfg.Compression, "output codec: none, lz4, zstd")

	importCmd := &cobra.Command{
		Use:   "import <text file> <column file>",
		Short: "build a column file from text, one row per line",
		Args:  cobra.ExactArgs(2),
		RunE:  importRun,
	}
	infoCmd := &cobra.Command{
		Use:   "info <column file>",
		Short: "print rows, bytes, extremes and approximate distinct count",
		Args:  cobra.ExactArgs(1),
		RunE:  infoRun,
	}
	sortCmd := &cobra.Command{
		Use:   "sort <in> <out>",
		Short: "rewrite a column file in sorted row order",
		Args:  cobra.ExactArgs(2),
		RunE:  sortRun,
	}
	sortCmd.Flags().Bool("reverse", false, "descending order")
	sortCmd.Flags().Int("limit", 0, "only order the first N rows, 0 for all")
	convertCmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "recompress a column file with the configured codec",
		Args:  cobra.ExactArgs(2),
		RunE:  convertRun,
	}

	rootCmd.AddCommand(importCmd, infoCmd, sortCmd, convertCmd)

	if err := rootCmd.Execute(); err != nil {
		util.Error("blobtool failed", zap.Error(err))
		os.Exit(1)
	}
}
