// Package archivetest runs an in-process imitation of the archive's login and
// upload forms for tests.
package archivetest

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

const DefaultOptions = `<select name="course" id="id_course">
<option value="" selected>---------</option>
<option value="7">CS-101: Introduction to programming</option>
<option value="99">CS-101: Introduction to programming (old)</option>
<option value="2253">MS-A0102: Differential and integral calculus 1</option>
<option value="2441">PHYS-C0220: Termodynamiikka ja statistinen fysiikka</option>
</select>
<select name="lang" id="id_lang">
<option value="" selected>---------</option>
<option value="1">Finnish</option>
<option value="2">Swedish</option>
<option value="3">English</option>
</select>
<select name="exam_type" id="id_exam_type">
<option value="4">Other</option>
</select>`

// Submission is one accepted or rejected upload.
type Submission struct {
	Token    string
	Referer  string
	Fields   map[string]string
	Filename string
	Content  []byte
	Status   int
}

// Server imitates the archive. Every GET of a form and every POST response
// carries a fresh token, and a POST is only accepted with the last token handed out.
type Server struct {
	*httptest.Server

	Username string
	Password string
	// Options is the html placed inside the upload form.
	Options string
	// RequireSession rejects uploads without a session cookie.
	RequireSession bool
	// Reject maps uploaded filenames to the status they are answered with.
	Reject map[string]int
	// OmitToken leaves the token out of every page.
	OmitToken bool

	mutex       sync.Mutex
	issued      int
	current     string
	Submissions []Submission
	LoginPosts  int
}

func NewServer() *Server {
	s := &Server{
		Username: "user",
		Password: "hunter2",
		Options:  DefaultOptions,
		Reject:   map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", s.handleLogin)
	mux.HandleFunc("/exams/add/", s.handleAddExam)
	s.Server = httptest.NewServer(mux)
	return s
}

// Issued returns every token handed out so far, oldest first.
func (s *Server) Issued() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	tokens := make([]string, s.issued)
	for i := range tokens {
		tokens[i] = tokenFor(i + 1)
	}
	return tokens
}

func tokenFor(n int) string {
	return fmt.Sprintf("tok%dEN%d", n, n*7919)
}

func (s *Server) nextToken() string {
	s.issued++
	s.current = tokenFor(s.issued)
	return s.current
}

func (s *Server) page(w http.ResponseWriter, status int, body string) {
	token := ""
	if !s.OmitToken {
		token = fmt.Sprintf(
			`<input type="hidden" name="csrfmiddlewaretoken" value="%s">`,
			html.EscapeString(s.nextToken()),
		)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "<html><body><form method=\"post\" enctype=\"multipart/form-data\">\n%s\n%s\n</form></body></html>", token, body)
}

func (s *Server) checkToken(r *http.Request, token string) bool {
	return token != "" && token == s.current &&
		r.Header.Get("Referer") == s.URL+r.URL.Path
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if r.Method == http.MethodGet {
		s.page(w, http.StatusOK, `<input name="username"><input name="password" type="password">`)
		return
	}

	s.LoginPosts++
	err := r.ParseForm()
	if err != nil {
		s.page(w, http.StatusBadRequest, "bad form")
		return
	}
	if !s.checkToken(r, r.PostForm.Get("csrfmiddlewaretoken")) {
		s.page(w, http.StatusForbidden, "CSRF verification failed.")
		return
	}
	if r.PostForm.Get("username") != s.Username || r.PostForm.Get("password") != s.Password {
		// like django, invalid credentials re-render the form with 200
		s.page(w, http.StatusOK, "Please enter a correct username and password.")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "s3ss10n", Path: "/"})
	s.page(w, http.StatusOK, "Welcome")
}

func (s *Server) handleAddExam(w http.ResponseWriter, r *http.Request) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if r.Method == http.MethodGet {
		s.page(w, http.StatusOK, s.Options)
		return
	}

	if s.RequireSession {
		cookie, err := r.Cookie("sessionid")
		if err != nil || cookie.Value == "" {
			s.page(w, http.StatusForbidden, "login required")
			return
		}
	}

	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		s.page(w, http.StatusBadRequest, "bad form")
		return
	}

	submission := Submission{
		Token:   r.FormValue("csrfmiddlewaretoken"),
		Referer: r.Header.Get("Referer"),
		Fields:  map[string]string{},
	}
	for _, key := range []string{"course", "exam_date", "desc", "lang"} {
		submission.Fields[key] = r.FormValue(key)
	}
	file, header, err := r.FormFile("exam_file")
	if err == nil {
		submission.Filename = header.Filename
		submission.Content, _ = io.ReadAll(file)
		file.Close()
	}

	switch {
	case !s.checkToken(r, submission.Token):
		submission.Status = http.StatusForbidden
	case s.Reject[submission.Filename] != 0:
		submission.Status = s.Reject[submission.Filename]
	case strings.TrimSpace(submission.Filename) == "":
		submission.Status = http.StatusBadRequest
	default:
		submission.Status = http.StatusOK
	}
	s.Submissions = append(s.Submissions, submission)

	s.page(w, submission.Status, s.Options)
}
