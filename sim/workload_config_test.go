package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkloadRecord_Validate(t *testing.T) {
	assert.NoError(t, WorkloadRecord{ID: 1, Kind: RecordRestock, Time: 0, Quantity: 3}.Validate())
	assert.Error(t, WorkloadRecord{ID: 1, Kind: "refund", Time: 0, Quantity: 3}.Validate())
	assert.Error(t, WorkloadRecord{ID: 1, Kind: RecordRequest, Time: -1, Quantity: 3}.Validate())
	assert.ErrorIs(t, WorkloadRecord{ID: 1, Kind: RecordRequest, Time: 1, Quantity: 0}.Validate(), ErrInvalidQuantity)
}

func TestValidateWorkload_RequiresNonDecreasingTimes(t *testing.T) {
	ok := []WorkloadRecord{
		{ID: 0, Kind: RecordRestock, Time: 0, Quantity: 5},
		{ID: 1, Kind: RecordRequest, Time: 0, Quantity: 1},
		{ID: 2, Kind: RecordRequest, Time: 3, Quantity: 1},
	}
	assert.NoError(t, validateWorkload(ok))
	assert.NoError(t, validateWorkload(nil))

	bad := append(ok, WorkloadRecord{ID: 3, Kind: RecordRequest, Time: 2, Quantity: 1})
	assert.Error(t, validateWorkload(bad))
}
