/*
Package thumbs handles thumbnail acquisition for browsable items: the
on-disk cache path convention (one JPEG per content key), an in-memory
cache of decoded images keyed by path and row height, and the generator
that renders new thumbnails.

Decoding prefers libvips (decode-time shrinking, see InitVips) and falls
back to the pure-Go imaging path when libvips is unavailable, mirroring the
generation side.
*/
package thumbs
