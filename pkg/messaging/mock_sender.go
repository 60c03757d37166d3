package messaging

import "context"

// MockMessageSender records reports in memory; used in tests and in the
// examples where no broker is running.
type MockMessageSender struct {
	Reports []*ExecutionReport
}

// NewMockMessageSender creates a new MockMessageSender.
func NewMockMessageSender() *MockMessageSender {
	return &MockMessageSender{}
}

// SendExecutionReport stores the report.
func (m *MockMessageSender) SendExecutionReport(_ context.Context, report *ExecutionReport) error {
	m.Reports = append(m.Reports, report)
	return nil
}

// Close does nothing.
func (m *MockMessageSender) Close() error {
	return nil
}

// Ensure MockMessageSender implements MessageSender
var _ MessageSender = (*MockMessageSender)(nil)
