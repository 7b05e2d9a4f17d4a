package services

// Recorder observes the outcome of lending operations. err is nil on success.
type Recorder interface {
	LendingOperation(operation string, err error)
}

type nopRecorder struct{}

func (nopRecorder) LendingOperation(string, error) {}

const (
	OperationBorrow = "borrow"
	OperationReturn = "return"
)
