package services

// CycleStats summarizes one scheduler cycle run for operators:
// found=N processed=M failed=K.
type CycleStats struct {
	Found     int
	Processed int
	Failed    int
}
