package network

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Http interface {
	Get(req *http.Request) ([]byte, error)
	Post(url string, body []byte) ([]byte, error)
}

type DefaultHttp struct {
	client *http.Client
}

func NewHttp() Http {
	return &DefaultHttp{
		client: &http.Client{
			Timeout: time.Second * 15,
		},
	}
}

func (d *DefaultHttp) Get(req *http.Request) ([]byte, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)

	return buf, err
}

func (d *DefaultHttp) Post(url string, body []byte) ([]byte, error) {
	resp, err := d.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return buf, fmt.Errorf("unexpected status code %d posting to %s", resp.StatusCode, url)
	}

	return buf, nil
}
