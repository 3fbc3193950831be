package snowflake

import (
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// GeneratorType 区分不同业务的 ID 序列，避免互相占用同一节点的序列号
type GeneratorType int

const (
	GeneratorTypeUser GeneratorType = iota
	GeneratorTypeJourney
	GeneratorTypeAlert
	GeneratorTypeMessage
	generatorTypeCount
)

var (
	nodes [generatorTypeCount]*snowflake.Node
	once  sync.Once

	errInvalidMachineID   = errors.New("invalid snowflake machine id")
	errGeneratorUninitial = errors.New("snowflake generator is not initialized")
	errInvalidGenerator   = errors.New("invalid snowflake generator type")
)

func Init(machineID, dataCenterID int64) error {
	var initErr error

	once.Do(func() {
		if machineID < 0 || machineID > 31 {
			initErr = errInvalidMachineID
			return
		}
		// datacenterID 和 machineID 都是 0~31
		nodeID := (dataCenterID << 5) | machineID

		for t := GeneratorType(0); t < generatorTypeCount; t++ {
			node, err := snowflake.NewNode((nodeID + int64(t)) % 1024)
			if err != nil {
				initErr = err
				return
			}
			nodes[t] = node
		}
	})

	return initErr
}

func NextID(t GeneratorType) (int64, error) {
	if t < 0 || t >= generatorTypeCount {
		return 0, errInvalidGenerator
	}
	if nodes[t] == nil {
		return 0, errGeneratorUninitial
	}

	return nodes[t].Generate().Int64(), nil
}
