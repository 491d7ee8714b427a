package desc

// Method is an RPC method descriptor. Services and methods round out the
// descriptor model but are not exercised by the binary or JSON codecs,
// which only ever walk messages, fields, and enums.
type Method struct {
	name              string
	inputType         string
	outputType        string
	isStreamingClient bool
	isStreamingServer bool
	options           Options
}

// NewMethod creates a method descriptor.
func NewMethod(name, inputType, outputType string, clientStreaming, serverStreaming bool) *Method {
	return &Method{
		name:              name,
		inputType:         inputType,
		outputType:        outputType,
		isStreamingClient: clientStreaming,
		isStreamingServer: serverStreaming,
	}
}

func (m *Method) Name() string               { return m.name }
func (m *Method) InputType() string          { return m.inputType }
func (m *Method) OutputType() string         { return m.outputType }
func (m *Method) IsStreamingClient() bool    { return m.isStreamingClient }
func (m *Method) IsStreamingServer() bool    { return m.isStreamingServer }
func (m *Method) Options() Options           { return m.options }
func (m *Method) SetOptions(o Options)       { m.options = o }

func (m *Method) Equal(other *Method) bool {
	if other == nil {
		return false
	}
	return m.name == other.name && m.inputType == other.inputType &&
		m.outputType == other.outputType &&
		m.isStreamingClient == other.isStreamingClient &&
		m.isStreamingServer == other.isStreamingServer &&
		m.options.Equal(other.options)
}

// Service is a service descriptor, methods indexed by name.
type Service struct {
	name     string
	fullName string

	methods     map[string]*Method
	methodOrder []string

	options Options
}

// NewService creates a service descriptor with only a local name.
func NewService(name string) *Service {
	return &Service{
		name:     name,
		fullName: name,
		methods:  make(map[string]*Method),
	}
}

func (s *Service) Name() string     { return s.name }
func (s *Service) FullName() string { return s.fullName }

// AddMethod adds or replaces (by name) a method on this service.
func (s *Service) AddMethod(m *Method) {
	if _, exists := s.methods[m.name]; !exists {
		s.methodOrder = append(s.methodOrder, m.name)
	}
	s.methods[m.name] = m
}

// MethodByName looks up a method by name.
func (s *Service) MethodByName(name string) (*Method, bool) {
	m, ok := s.methods[name]
	return m, ok
}

// Methods returns the service's methods in declaration order.
func (s *Service) Methods() []*Method {
	out := make([]*Method, 0, len(s.methodOrder))
	for _, name := range s.methodOrder {
		out = append(out, s.methods[name])
	}
	return out
}

func (s *Service) Options() Options     { return s.options }
func (s *Service) SetOptions(o Options) { s.options = o }

// Equal reports semantic equality between two service descriptors.
func (s *Service) Equal(other *Service) bool {
	if other == nil {
		return false
	}
	if s.name != other.name || s.fullName != other.fullName {
		return false
	}
	if len(s.methods) != len(other.methods) {
		return false
	}
	for name, m := range s.methods {
		om, ok := other.methods[name]
		if !ok || !m.Equal(om) {
			return false
		}
	}
	return s.options.Equal(other.options)
}
