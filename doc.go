/*
Package sparoute routes the pages of "Single Page Applications" (SPAs) on the
client side, loading the scripts of pages on demand and only once.

On the client side, an App ties together a shell document with its header and
content regions, a route table, a resource loader, the registry of page
handlers, a history, and the navigation controller. A navigation resolves the
current path to a route, loads the route's script if not already loaded,
dispatches to the page handler registered by that script, and finally swaps
the rendered content into the document. Newer navigations supersede older ones
still in progress.

On the server side, the ShellHandler type implements http.Handler to serve the
shell page and its static assets, adapting the shell's base element to the
base path the SPA is reached through, based on forwarding proxy headers.
*/
package sparoute
