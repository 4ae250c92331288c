package rates

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Mx2468/bellman-ford-arbitrage/pkg/types"
)

// LoadFile reads observations from a file, dispatching on extension:
// .json for a JSON observation array, .csv for base,quote,rate[,fee]
// rows. Validation of rate and fee values is left to the graph builder.
func LoadFile(path string) ([]types.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening observations file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	default:
		return ReadJSON(f)
	}
}

// ReadJSON decodes a JSON array of observations.
func ReadJSON(r io.Reader) ([]types.Observation, error) {
	var observations []types.Observation
	if err := json.NewDecoder(r).Decode(&observations); err != nil {
		return nil, fmt.Errorf("decoding observations: %w", err)
	}
	return observations, nil
}

// ReadCSV decodes base,quote,rate[,fee] rows. A header row whose rate
// column is not numeric is skipped.
func ReadCSV(r io.Reader) ([]types.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var observations []types.Observation
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line++

		if len(record) < 3 {
			return nil, fmt.Errorf("csv line %d: want base,quote,rate[,fee], got %d fields", line, len(record))
		}

		rate, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("csv line %d: bad rate %q: %w", line, record[2], err)
		}

		obs := types.Observation{
			Base:  strings.ToUpper(strings.TrimSpace(record[0])),
			Quote: strings.ToUpper(strings.TrimSpace(record[1])),
			Rate:  rate,
		}
		if len(record) > 3 && record[3] != "" {
			fee, err := strconv.ParseFloat(record[3], 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: bad fee %q: %w", line, record[3], err)
			}
			obs.Fee = fee
		}
		observations = append(observations, obs)
	}
	return observations, nil
}
