package network

import "net/http"

type MockHttp struct {
	GetFunc  func(req *http.Request) ([]byte, error)
	PostFunc func(url string, body []byte) ([]byte, error)
}

func (m *MockHttp) Get(req *http.Request) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(req)
	}

	return nil, nil
}

func (m *MockHttp) Post(url string, body []byte) ([]byte, error) {
	if m.PostFunc != nil {
		return m.PostFunc(url, body)
	}

	return nil, nil
}
