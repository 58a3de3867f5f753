package api

import "github.com/gin-gonic/gin"

// Controller is the gin group a Module mounts onto. The plain verbs wrap
// handlers that need the current user; the PUBLIC_ verbs wrap handlers that
// don't. RAW mounts a gin handler untouched (websockets, file servers).
type Controller struct {
	Group *gin.RouterGroup
}

func (c *Controller) GET(path string, h HandlerFuncWithAuth, mw ...gin.HandlerFunc) {
	c.Group.GET(path, append(mw, ResolveEndpointWithAuth(h))...)
}

func (c *Controller) POST(path string, h HandlerFuncWithAuth, mw ...gin.HandlerFunc) {
	c.Group.POST(path, append(mw, ResolveEndpointWithAuth(h))...)
}

func (c *Controller) PUT(path string, h HandlerFuncWithAuth, mw ...gin.HandlerFunc) {
	c.Group.PUT(path, append(mw, ResolveEndpointWithAuth(h))...)
}

func (c *Controller) DELETE(path string, h HandlerFuncWithAuth, mw ...gin.HandlerFunc) {
	c.Group.DELETE(path, append(mw, ResolveEndpointWithAuth(h))...)
}

func (c *Controller) PUBLIC_GET(path string, h HandlerFunc) {
	c.Group.GET(path, ResolveEndpoint(h))
}

func (c *Controller) PUBLIC_POST(path string, h HandlerFunc) {
	c.Group.POST(path, ResolveEndpoint(h))
}

func (c *Controller) RAW(method, path string, handlers ...gin.HandlerFunc) {
	c.Group.Handle(method, path, handlers...)
}
