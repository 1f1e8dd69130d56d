// Package collect drives the quiz loop: it presents questions on a
// line-oriented prompt, records answers, typed work, and handwritten
// work images, and leaves all telemetry bookkeeping to the session.
// The same protocol serves interactive terminals and scripted answer
// files.
package collect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/mathdrill/internal/question"
	"github.com/abhisek/mathdrill/internal/quiz"
)

// workTerminator ends a multi-line typed-work block.
const workTerminator = "."

type action int

const (
	actNext action = iota
	actPrev
	actGoto
	actFinish
)

// Collector reads answers and commands from in and prompts on out.
type Collector struct {
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger

	// readImage loads an attached image file.
	readImage func(path string) ([]byte, error)
}

// New creates a collector over the given streams.
func New(in io.Reader, out io.Writer, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Collector{in: sc, out: out, logger: logger, readImage: os.ReadFile}
}

// Run walks the session's questions in order. A plain line answers the
// current question and advances; commands navigate, capture work, or
// finish early. Run returns when every question has been visited, on
// ":finish", or at end of input.
func (c *Collector) Run(sess *quiz.Session) error {
	total := len(sess.Questions)
	if total == 0 {
		return errors.New("session has no questions")
	}

	c.printIntro(sess)
	idx := 0
	for {
		q := sess.Questions[idx]
		sess.MarkShown(q.QuestionID, time.Now())
		c.printQuestion(sess, idx, total, q)

		act, target := c.collectOne(sess, q)
		switch act {
		case actFinish:
			return c.in.Err()
		case actPrev:
			if idx > 0 {
				idx--
			}
		case actGoto:
			idx = target
		case actNext:
			if idx == total-1 {
				return c.in.Err()
			}
			idx++
		}
	}
}

// collectOne handles input for one question until navigation is
// requested.
func (c *Collector) collectOne(sess *quiz.Session, q question.Question) (action, int) {
	for {
		fmt.Fprint(c.out, "> ")
		if !c.in.Scan() {
			return actFinish, 0
		}
		line := strings.TrimSpace(c.in.Text())

		switch {
		case line == "":
			continue
		case line == ":finish":
			return actFinish, 0
		case line == ":next":
			return actNext, 0
		case line == ":prev":
			return actPrev, 0
		case strings.HasPrefix(line, ":goto "):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, ":goto ")))
			if err != nil || n < 1 || n > len(sess.Questions) {
				fmt.Fprintf(c.out, "usage: :goto <1-%d>\n", len(sess.Questions))
				continue
			}
			return actGoto, n - 1
		case line == ":work":
			c.captureWork(sess, q.QuestionID)
		case strings.HasPrefix(line, ":image "):
			c.attachImage(sess, q.QuestionID, strings.TrimSpace(strings.TrimPrefix(line, ":image ")))
		case line == ":help":
			c.printHelp()
		case strings.HasPrefix(line, ":"):
			fmt.Fprintf(c.out, "unknown command %s (type :help)\n", line)
		default:
			sess.RecordAnswer(q.QuestionID, line, time.Now())
			return actNext, 0
		}
	}
}

// captureWork reads typed work lines until the terminator or end of
// input and stores the block on the session.
func (c *Collector) captureWork(sess *quiz.Session, questionID string) {
	fmt.Fprintf(c.out, "Enter your working, end with %q on its own line:\n", workTerminator)
	var lines []string
	for c.in.Scan() {
		line := c.in.Text()
		if strings.TrimSpace(line) == workTerminator {
			break
		}
		lines = append(lines, line)
	}
	work := strings.TrimSpace(strings.Join(lines, "\n"))
	if work == "" {
		fmt.Fprintln(c.out, "No work recorded.")
		return
	}
	sess.RecordTypedWork(questionID, work)
	fmt.Fprintln(c.out, "Work recorded.")
}

func (c *Collector) attachImage(sess *quiz.Session, questionID, path string) {
	if path == "" {
		fmt.Fprintln(c.out, "usage: :image <path>")
		return
	}
	data, err := c.readImage(path)
	if err != nil {
		fmt.Fprintf(c.out, "Cannot read image: %v\n", err)
		return
	}
	sess.AttachImage(questionID, filepath.Base(path), mimeForPath(path), data)
	fmt.Fprintf(c.out, "Attached %s (%d bytes).\n", filepath.Base(path), len(data))
	c.logger.Debug("handwritten work attached",
		"question_id", questionID, "file", filepath.Base(path), "bytes", len(data))
}

func (c *Collector) printIntro(sess *quiz.Session) {
	fmt.Fprintf(c.out, "Quiz: %s (%d questions)\n", sess.Topic, len(sess.Questions))
	fmt.Fprintln(c.out, "Type an answer to submit and move on, or :help for commands.")
	fmt.Fprintln(c.out)
}

func (c *Collector) printQuestion(sess *quiz.Session, idx, total int, q question.Question) {
	fmt.Fprintf(c.out, "Question %d/%d [%s]", idx+1, total, q.Difficulty)
	if len(q.ConceptTags) > 0 {
		fmt.Fprintf(c.out, "  (%s)", strings.Join(q.ConceptTags, ", "))
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, q.QuestionText)
	if q.Unit != "" {
		fmt.Fprintf(c.out, "Answer in: %s\n", q.Unit)
	}
	if resp, ok := sess.Responses[q.QuestionID]; ok && resp.FinalAnswer != "" {
		fmt.Fprintf(c.out, "Current answer: %s\n", resp.FinalAnswer)
	}
}

func (c *Collector) printHelp() {
	fmt.Fprint(c.out, `Commands:
  <answer>       submit an answer and move to the next question
  :work          type out your working (end with "." on its own line)
  :image <path>  attach a photo of handwritten work
  :next          skip to the next question without answering
  :prev          go back one question
  :goto <n>      jump to question n
  :finish        end the quiz now
  :help          show this help
`)
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
