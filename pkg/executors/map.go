package executors

import (
	"slices"

	"pkg.jsn.cam/skyreduce/pkg/executors/average"
	"pkg.jsn.cam/skyreduce/pkg/executors/maxvalue"
	"pkg.jsn.cam/skyreduce/pkg/executors/skycell"
	"pkg.jsn.cam/skyreduce/pkg/executors/wordcount"
)

var Executors = map[string]Worker{
	"wordcount": wordcount.WordCountWorker{},
	"maxvalue":  maxvalue.MaxValueWorker{},
	"average":   average.AverageWorker{},
	"skycell":   skycell.CellCountWorker{CellDeg: skycell.DefaultCellDeg},
}

func IsValidExecutor(name string) bool {
	_, exists := Executors[name]
	return exists
}

func GetExecutor(name string) (Worker, error) {
	if worker, exists := Executors[name]; exists {
		return worker, nil
	}
	return nil, ErrUnknownExecutor
}

// ListExecutors returns the registered names, sorted.
func ListExecutors() []string {
	names := make([]string, 0, len(Executors))
	for name := range Executors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func GetDescription(name string) (string, error) {
	worker, err := GetExecutor(name)
	if err != nil {
		return "", err
	}
	return worker.Description(), nil
}
