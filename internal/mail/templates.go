package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

var confirmHTML = template.Must(template.New("confirm").Parse(`<p>Welcome to Dymm!</p>
<p>Please confirm your email address by following the link below.</p>
<p><a href="{{.URL}}">Confirm my account</a></p>
<p>The link expires in {{.Hours}} hours.</p>`))

var codeHTML = template.Must(template.New("code").Parse(`<p>Your Dymm verification code is</p>
<h2>{{.Code}}</h2>
<p>It expires in {{.Minutes}} minutes.</p>`))

var resultHTML = template.Must(template.New("result").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Dymm</title></head>
<body><p>{{.}}</p></body></html>`))

func ConfirmMessage(to, url string, hours int) (Message, error) {
	var b bytes.Buffer
	if err := confirmHTML.Execute(&b, struct {
		URL   string
		Hours int
	}{url, hours}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Confirm your account on Dymm",
		Text:    fmt.Sprintf("Confirm your Dymm account: %s\nThe link expires in %d hours.", url, hours),
		HTML:    b.String(),
	}, nil
}

func CodeMessage(to, code string, minutes int) (Message, error) {
	var b bytes.Buffer
	if err := codeHTML.Execute(&b, struct {
		Code    string
		Minutes int
	}{code, minutes}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Your Dymm verification code",
		Text:    fmt.Sprintf("Your Dymm verification code is %s. It expires in %d minutes.", code, minutes),
		HTML:    b.String(),
	}, nil
}

// ResultPage renders the page shown after a confirmation link is opened.
func ResultPage(message string) ([]byte, error) {
	var b bytes.Buffer
	if err := resultHTML.Execute(&b, message); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
