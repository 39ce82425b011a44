package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// maxRequestHead bounds the bytes read while looking for the request head.
	maxRequestHead = 4000
	ioTimeout      = 10 * time.Second
)

// handleConn answers a single request on conn and closes it. It is the job
// routine the accept loop submits for every connection. The returned error
// is the job status recorded by the pool.
func handleConn(conn net.Conn) error {
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(ioTimeout)); err != nil {
		return err
	}

	req, err := http.ReadRequest(bufio.NewReader(io.LimitReader(conn, maxRequestHead)))
	if err != nil {
		if errors.Is(err, io.EOF) {
			// peer closed without sending anything
			return nil
		}
		if werr := respond(conn, http.StatusBadRequest, "Bad Request."); werr != nil {
			return werr
		}
		return fmt.Errorf("read request: %w", err)
	}

	if req.Method != http.MethodGet {
		return respond(conn, http.StatusNotImplemented, "Method is not supported.")
	}
	return respond(conn, http.StatusOK, "Requested "+req.URL.Path+"\n")
}

func respond(w io.Writer, code int, body string) error {
	resp := &http.Response{
		StatusCode:    code,
		ProtoMajor:    1,
		ProtoMinor:    0,
		Header:        make(http.Header),
		ContentLength: int64(len(body)),
		Body:          io.NopCloser(strings.NewReader(body)),
		Close:         true,
	}
	resp.Header.Set("Server", "workpool-server/1.0")
	resp.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return resp.Write(w)
}
