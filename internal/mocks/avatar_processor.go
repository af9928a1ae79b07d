package mocks

// MockAvatarProcessor implements service.AvatarProcessor. Without ProcessFn
// it returns the input unchanged.
type MockAvatarProcessor struct {
	ProcessFn func(filename string, data []byte) ([]byte, error)

	LastFilename string
}

// Process implements service.AvatarProcessor.
func (m *MockAvatarProcessor) Process(filename string, data []byte) ([]byte, error) {
	m.LastFilename = filename
	if m.ProcessFn != nil {
		return m.ProcessFn(filename, data)
	}
	return data, nil
}
