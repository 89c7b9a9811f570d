// Package chrome drives a Chromium browser over the DevTools protocol and
// exposes it as the host platform for the summary panel and as the document
// surface for the page observer.
//
// Every tab opened through a Browser gets a small script bridge installed in
// each new document. The bridge forwards focus, blur, input and mutation
// events through a runtime binding; the Tab decodes them and hands them to
// the observer's event sink.
package chrome
