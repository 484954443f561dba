// Package bluelm implements generation.Completer against a BlueLM-compatible
// completion gateway.
//
// Every call is a single POST to <url>?requestId=<uuid> carrying a JSON body
// with the prompt, model, a fresh session id and sampling parameters. Requests
// are authenticated with an HMAC-SHA256 signature over the method, path, query,
// application id, timestamp and nonce. Both the gateway-native envelope
// {code, msg, data:{content}} and OpenAI-style {choices:[{message:{content}}]}
// responses are understood.
package bluelm
